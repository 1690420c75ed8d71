/*
 * savevault: save-data backup and restore engine
 * Copyright © 2026 Mario Finelli
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package engine wires together manifest lookup, store discovery,
// install-dir ranking, scanning and backup/restore layout into the
// handful of operations the cmd package actually exposes. It exists so
// the cobra command files stay thin dispatchers, the way the teacher's
// cmd package defers everything but flag parsing to internal.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"

	"github.com/mfinelli/savevault/internal/apperr"
	"github.com/mfinelli/savevault/internal/cache"
	"github.com/mfinelli/savevault/internal/config"
	"github.com/mfinelli/savevault/internal/layout"
	"github.com/mfinelli/savevault/internal/manifest"
	"github.com/mfinelli/savevault/internal/pathresolve"
	"github.com/mfinelli/savevault/internal/pipeline"
	"github.com/mfinelli/savevault/internal/ranking"
	"github.com/mfinelli/savevault/internal/scan"
	"github.com/mfinelli/savevault/internal/store"
)

// Engine holds everything an operation needs: the resolved config, the
// loaded manifest catalog and the installs discovered across every
// configured storefront.
type Engine struct {
	Config   config.Config
	Catalog  *manifest.Catalog
	Installs []store.Install

	// Cache is nil when the cache database isn't available (e.g. before
	// `savevault init` has run); every caller treats it as best-effort.
	Cache *cache.Queries
}

// New loads the manifest from manifestPath and discovers installs
// across the standard store probes.
func New(cfg config.Config, manifestPath string) (*Engine, error) {
	cat, err := manifest.LoadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}

	probes := []store.Probe{
		store.SteamProbe{},
		store.HeroicProbe{},
	}

	installs, warnings, errs := store.DiscoverAll(probes)
	for _, w := range warnings {
		log.Warn().Str("component", "store").Msg(w)
	}
	for _, e := range errs {
		log.Warn().Err(e).Msg("store probe failed")
	}
	if len(errs) == len(probes) && len(probes) > 0 {
		return nil, apperr.New(apperr.KindStoreProbeFailed, "", fmt.Errorf("every store probe failed"))
	}

	eng := &Engine{Config: cfg, Catalog: cat, Installs: installs}

	q, err := OpenCache(cfg.CacheDB)
	if err != nil {
		log.Warn().Err(err).Msg("cache database unavailable; manifest freshness won't be recorded")
	} else {
		eng.Cache = q
		if err := q.SetManifestState(context.Background(), cache.ManifestState{
			Source:    manifestPath,
			FetchedAt: time.Now(),
		}); err != nil {
			log.Warn().Err(err).Msg("recording manifest state failed")
		}
	}

	return eng, nil
}

// OpenCache opens and migrates the cache database at path, returning a
// ready-to-use Queries. Shared by Engine construction and any cmd that
// needs the cache outside a full Engine (manifest show/validate).
func OpenCache(path string) (*cache.Queries, error) {
	if err := cache.EnsureExists(path); err != nil {
		return nil, err
	}

	db, err := cache.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if err := cache.Migrate(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migrating cache database: %w", err)
	}

	return cache.New(db), nil
}

// FindBySteamID looks up a game by its Steam appid, matching the
// original tool's --by-steam-id lookup. Callers that reach this via a
// deprecated flag should log a deprecation warning themselves; the
// lookup behavior is unchanged by how it was invoked.
func (e *Engine) FindBySteamID(appid string) (*manifest.Game, bool) {
	return e.Catalog.BySteamID(appid)
}

// FindByName resolves a game by exact name or alias, falling back to a
// fuzzy ranking match against every known title when no exact match
// exists, matching the find subcommand's dual lookup mode.
func (e *Engine) FindByName(name string) (*manifest.Game, float64, bool) {
	if g, ok := e.Catalog.Lookup(name); ok {
		return g, 1.0, true
	}

	var candidates []ranking.Candidate
	var names []string
	for n := range e.Catalog.Games {
		candidates = append(candidates, ranking.Candidate{Path: n})
		names = append(names, n)
	}
	sort.Strings(names)

	ranked := ranking.Rank(candidates, []string{name})
	if len(ranked) == 0 || !ranking.Confident(ranked) {
		if len(ranked) > 0 {
			return e.Catalog.Games[ranked[0].Candidate.Path], ranked[0].Score, false
		}
		return nil, 0, false
	}

	best := ranked[0]
	return e.Catalog.Games[best.Candidate.Path], best.Score, true
}

// installsFor returns every discovered Install for a game: an exact
// storefront-id match when the manifest records one (Steam appid, GOG
// or Epic id via Heroic), or -- for generic/unmatched stores -- every
// candidate whose name ranking.Rank can later disambiguate using the
// manifest's installDir hints.
func (e *Engine) installsFor(g *manifest.Game) []store.Install {
	var out []store.Install
	for _, inst := range e.Installs {
		switch inst.StoreID {
		case "steam":
			if g.Stores.Steam != "" && inst.StoreGameID == g.Stores.Steam {
				out = append(out, inst)
			}
		case "heroic":
			if (g.Stores.Gog != "" && inst.StoreGameID == g.Stores.Gog) ||
				(g.Stores.Epic != "" && inst.StoreGameID == g.Stores.Epic) {
				out = append(out, inst)
			}
		default:
			if len(g.Install) == 0 {
				continue
			}
			out = append(out, inst)
		}
	}
	return out
}

// resolveRoot picks the install root for a game, ranking candidates by
// the manifest's installDir hints when more than one install is known.
func (e *Engine) resolveRoot(g *manifest.Game) (string, error) {
	installs := e.installsFor(g)
	if len(installs) == 0 {
		return "", nil
	}
	if len(installs) == 1 {
		return installs[0].InstallRoot, nil
	}

	candidates := make([]ranking.Candidate, len(installs))
	for i, inst := range installs {
		candidates[i] = ranking.Candidate{Path: inst.InstallRoot}
	}

	ranked := ranking.Rank(candidates, g.Install)
	if !ranking.Confident(ranked) {
		return "", apperr.New(apperr.KindAmbiguousRoot, g.Name,
			fmt.Errorf("%d install roots matched with no clear winner", len(installs)))
	}

	return ranked[0].Candidate.Path, nil
}

// pathContext builds a pathresolve.Context for game, anchored at root.
func pathContext(root, storeUserID string) pathresolve.Context {
	home, _ := os.UserHomeDir()

	return pathresolve.Context{
		Root:          root,
		Home:          home,
		XDGData:       xdg.DataHome,
		XDGConfig:     xdg.ConfigHome,
		StoreUserID:   storeUserID,
		CaseSensitive: true,
	}
}

// GameLayout opens (creating if needed) the on-disk layout for g.
func (e *Engine) GameLayout(g *manifest.Game) (*layout.GameLayout, error) {
	fmtKind, err := layout.ParseFormat(e.Config.Format)
	if err != nil {
		return nil, err
	}
	compression, err := layout.ParseCompression(e.Config.Compression)
	if err != nil {
		return nil, err
	}

	return layout.NewGameLayout(e.Config.BackupDir, g.Name, fmtKind, compression)
}

// BackupGame scans and backs up a single game, selecting Full or
// Differential automatically: Full when no backup yet exists, or when
// a forced full is requested, Differential otherwise.
func (e *Engine) BackupGame(ctx context.Context, g *manifest.Game, forceFull bool, selfDir string) (layout.Backup, scan.Info, error) {
	root, err := e.resolveRoot(g)
	if err != nil {
		return layout.Backup{}, scan.Info{}, err
	}

	gl, err := e.GameLayout(g)
	if err != nil {
		return layout.Backup{}, scan.Info{}, err
	}

	pctx := pathContext(root, "")
	info, err := scan.ForBackup(g, pctx, selfDir, gl)
	if err != nil {
		return layout.Backup{}, info, err
	}

	kind := layout.KindDifferential
	if forceFull {
		kind = layout.KindFull
	} else if _, ok, err := gl.Latest(); err != nil {
		return layout.Backup{}, info, err
	} else if !ok {
		kind = layout.KindFull
	}

	backup, err := gl.BackUp(ctx, info, kind, e.Config.Retention)
	return backup, info, err
}

// RestoreGame restores a single game from id ("latest" for the most
// recent backup), remapping each file through any configured redirects.
func (e *Engine) RestoreGame(g *manifest.Game, id string) ([]layout.ResolvedFile, scan.Info, error) {
	gl, err := e.GameLayout(g)
	if err != nil {
		return nil, scan.Info{}, err
	}
	return gl.Restore(id, e.Config.Redirects)
}

// Subjects turns a list of requested game names/selectors into
// pipeline.Subject values, splitting out names the catalog doesn't
// recognize.
func (e *Engine) Subjects(requested []string) (valid []pipeline.Subject, invalid []string) {
	return pipeline.SplitSubjects(requested, func(name string) bool {
		_, ok := e.Catalog.Lookup(name)
		return ok
	})
}

// AllGameNames returns every known game name, sorted, for an operation
// invoked with no explicit subject list.
func (e *Engine) AllGameNames() []string {
	names := make([]string, 0, len(e.Catalog.Games))
	for n := range e.Catalog.Games {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SelfDir returns the directory the running binary lives in, so scans
// can exclude it via fsutil.IsUnderDir.
func SelfDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}
