// Zaparoo Session
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Session.
//
// Zaparoo Session is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Session is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Session.  If not, see <http://www.gnu.org/licenses/>.

// Package profiles resolves per-game launch profiles. Given the command line
// a game would have been started with, it finds the matching profile, merges
// its environment over the user's global settings and builds the final
// wrapped command.
package profiles

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZaparooProject/zaparoo-session/pkg/config"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/shellwords"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	profileExt = ".yaml"

	// maxAncestorLevels bounds the upward directory walk from the target.
	maxAncestorLevels = 3

	envGameWrapper   = "GAME_WRAPPER"
	envGameExtraArgs = "GAME_EXTRA_ARGS"
)

var (
	ErrNoArguments     = errors.New("no arguments to launch")
	ErrCommandNotFound = errors.New("command not found")
)

// genericNames are launcher file names that say nothing about the game;
// the parent directory name is used instead.
var genericNames = map[string]bool{
	"start":    true,
	"run":      true,
	"launcher": true,
	"launch":   true,
	"game":     true,
}

// stopDirs end the ancestor walk: past them directory names belong to the
// library layout rather than to a game.
var stopDirs = map[string]bool{
	"common":    true,
	"steamapps": true,
	"GOG Games": true,
	"Games":     true,
	"home":      true,
	"bin":       true,
}

// Profile is a per-game YAML override document.
type Profile struct {
	EnvVars       map[string]yaml.Node `yaml:"env_vars"`
	GameWrapper   yaml.Node            `yaml:"GAME_WRAPPER"`
	GameExtraArgs yaml.Node            `yaml:"GAME_EXTRA_ARGS"`
}

// Invocation is a game launch as it was requested.
type Invocation struct {
	Target        string
	EffectiveName string
	Args          []string
}

// Resolution is the fully prepared launch.
type Resolution struct {
	Env         map[string]string
	ProfilePath string
	MatchedBy   string
	Invocation  Invocation
	Environ     []string
	Command     []string
}

// Resolver prepares and executes game launches.
type Resolver struct {
	fs         afero.Fs
	cmd        command.Executor
	userConfig string
	profileDir string
	appID      string
	environ    []string
}

// NewResolver creates a Resolver for the given settings. environ is the
// base environment of the launched game, normally os.Environ().
//
//nolint:gocritic // settings copied for immutability
func NewResolver(settings config.Settings, environ []string, cmd command.Executor) *Resolver {
	return NewResolverWithFs(afero.NewOsFs(), settings, environ, cmd)
}

// NewResolverWithFs creates a Resolver reading profiles and probing targets
// on fs. This is useful for testing.
//
//nolint:gocritic // settings copied for immutability
func NewResolverWithFs(
	fs afero.Fs,
	settings config.Settings,
	environ []string,
	cmd command.Executor,
) *Resolver {
	appID := strings.TrimSpace(settings.SteamAppID)
	if appID == "0" {
		// non-Steam shortcuts report app ID 0
		appID = ""
	}
	return &Resolver{
		fs:         fs,
		cmd:        cmd,
		userConfig: settings.UserConfig,
		profileDir: settings.ProfilesPath(),
		appID:      appID,
		environ:    environ,
	}
}

// Identify picks the target executable from args and derives its effective
// game name. The last absolute path to an existing file wins; otherwise the
// first argument is used as the target.
func (r *Resolver) Identify(args []string) (Invocation, error) {
	if len(args) == 0 {
		return Invocation{}, ErrNoArguments
	}

	inv := Invocation{Args: args}
	for i := len(args) - 1; i >= 0; i-- {
		arg := args[i]
		if !filepath.IsAbs(arg) {
			continue
		}
		if info, err := r.fs.Stat(arg); err == nil && !info.IsDir() {
			inv.Target = filepath.Clean(arg)
			break
		}
	}

	if inv.Target == "" {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			abs = args[0]
		}
		inv.Target = abs
	}

	inv.EffectiveName = EffectiveName(inv.Target)
	return inv, nil
}

// EffectiveName returns the game name implied by target: its stem, or the
// nearest ancestor directory name when the stem is a generic launcher name.
// Container directories such as bin are skipped.
func EffectiveName(target string) string {
	name := stem(target)
	if !genericNames[strings.ToLower(name)] {
		return name
	}
	for _, dir := range ancestors(target) {
		if !stopDirs[dir] {
			return dir
		}
	}
	return name
}

// FindProfile locates the profile for inv. An identity match on the app ID
// takes precedence over any name match. It returns the profile path and how
// it was matched, or empty strings if nothing matched.
func (r *Resolver) FindProfile(inv Invocation) (path, matchedBy string) {
	if r.appID != "" {
		if p := r.findByID(); p != "" {
			log.Info().Str("app_id", r.appID).Str("profile", filepath.Base(p)).Msg("profile matched by app id")
			return p, "identity"
		}
	}

	for _, c := range r.nameCandidates(inv) {
		p := filepath.Join(r.profileDir, c+profileExt)
		if r.isFile(p) {
			log.Info().Str("profile", filepath.Base(p)).Msg("profile matched by name")
			return p, "name"
		}
	}
	return "", ""
}

// nameCandidates lists profile names to try in order: the effective name,
// the target stem, the containing directory, the app ID, then the remaining
// ancestors. The ancestor walk ends at the first container directory.
func (r *Resolver) nameCandidates(inv Invocation) []string {
	names := []string{inv.EffectiveName, stem(inv.Target)}
	for i, dir := range ancestors(inv.Target) {
		if stopDirs[dir] {
			break
		}
		names = append(names, dir)
		if i == 0 && r.appID != "" {
			names = append(names, r.appID)
		}
	}
	if r.appID != "" && !slices.Contains(names, r.appID) {
		names = append(names, r.appID)
	}

	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// findByID scans every profile for an identity line carrying the app ID.
func (r *Resolver) findByID() string {
	matches, err := afero.Glob(r.fs, filepath.Join(r.profileDir, "*"+profileExt))
	if err != nil {
		log.Warn().Err(err).Str("dir", r.profileDir).Msg("failed to list profiles")
		return ""
	}

	for _, p := range matches {
		data, err := afero.ReadFile(r.fs, p)
		if err != nil {
			log.Debug().Err(err).Str("profile", p).Msg("skipping unreadable profile")
			continue
		}
		if HasIdentity(string(data), r.appID) {
			return p
		}
	}
	return ""
}

// HasIdentity reports whether content contains "STEAM_APPID: <id>" or
// "SDY_ID: <id>" with the id not followed by further digits.
func HasIdentity(content, id string) bool {
	if id == "" {
		return false
	}
	for _, key := range []string{"STEAM_APPID", "SDY_ID"} {
		needle := key + ": " + id
		rest := content
		for {
			i := strings.Index(rest, needle)
			if i < 0 {
				break
			}
			rest = rest[i+len(needle):]
			if rest == "" || rest[0] < '0' || rest[0] > '9' {
				return true
			}
		}
	}
	return false
}

// Resolve identifies the target, loads the matching profile, merges the
// environment and builds the final command.
func (r *Resolver) Resolve(args []string) (Resolution, error) {
	inv, err := r.Identify(args)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Invocation: inv}
	res.ProfilePath, res.MatchedBy = r.FindProfile(inv)

	global, _ := config.LoadYAMLFs[config.UserConfig](r.fs, r.userConfig)
	var profile Profile
	if res.ProfilePath != "" {
		profile, _ = config.LoadYAMLFs[Profile](r.fs, res.ProfilePath)
	}

	res.Env = MergeEnv(global.Env(), config.StringMap(profile.EnvVars))
	res.Environ = command.Environ(r.environ, res.Env)

	wrapper := overrideOr(&profile.GameWrapper, res.Env[envGameWrapper])
	extra := overrideOr(&profile.GameExtraArgs, res.Env[envGameExtraArgs])
	res.Command = BuildCommand(
		tokenize(envGameWrapper, wrapper),
		inv.Args,
		tokenize(envGameExtraArgs, extra),
	)
	return res, nil
}

// Exec replaces the current process with the resolved command. It only
// returns on failure; if the command cannot be found nothing is executed.
func (r *Resolver) Exec(res Resolution) error {
	if len(res.Command) == 0 {
		return ErrNoArguments
	}

	path, err := r.cmd.LookPath(res.Command[0], res.Environ)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCommandNotFound, res.Command[0], err)
	}

	log.Info().Str("exe", path).Strs("args", res.Command).Msg("exec game")
	if err := r.cmd.Exec(path, res.Command, res.Environ); err != nil {
		return fmt.Errorf("failed to exec game: %w", err)
	}
	return nil
}

// Launch resolves args and replaces the current process with the result.
func (r *Resolver) Launch(args []string) error {
	res, err := r.Resolve(args)
	if err != nil {
		return err
	}
	return r.Exec(res)
}

// MergeEnv overlays profile values on global ones; profile values win.
func MergeEnv(global, profile map[string]string) map[string]string {
	merged := make(map[string]string, len(global)+len(profile))
	maps.Copy(merged, global)
	maps.Copy(merged, profile)
	return merged
}

// BuildCommand places the wrapper before the original arguments and the
// extra arguments after them.
func BuildCommand(wrapper, args, extra []string) []string {
	cmd := make([]string, 0, len(wrapper)+len(args)+len(extra))
	cmd = append(cmd, wrapper...)
	cmd = append(cmd, args...)
	cmd = append(cmd, extra...)
	return cmd
}

func tokenize(key, value string) []string {
	tokens, err := shellwords.Split(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("ignoring malformed launch option")
		return nil
	}
	return tokens
}

func (r *Resolver) isFile(path string) bool {
	info, err := r.fs.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Debug().Err(err).Str("path", path).Msg("failed to stat profile candidate")
		}
		return false
	}
	return !info.IsDir()
}

// overrideOr returns the profile value when it is a non-empty scalar and
// fallback otherwise.
func overrideOr(profileValue *yaml.Node, fallback string) string {
	if s, ok := config.ScalarString(profileValue); ok && s != "" {
		return s
	}
	return fallback
}

// stem returns the base name of path without its final extension.
func stem(path string) string {
	base := filepath.Base(path)
	if s := strings.TrimSuffix(base, filepath.Ext(base)); s != "" {
		return s
	}
	return base
}

// ancestors returns the names of up to maxAncestorLevels directories above
// path, nearest first, stopping at the filesystem root.
func ancestors(path string) []string {
	names := make([]string, 0, maxAncestorLevels)
	dir := filepath.Dir(path)
	for range maxAncestorLevels {
		name := filepath.Base(dir)
		if name == string(filepath.Separator) || name == "." {
			break
		}
		names = append(names, name)
		dir = filepath.Dir(dir)
	}
	return names
}
