package publish

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/fileutil"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/workspace"
)

const remoteName = "origin"

// Result describes what a publish did.
type Result struct {
	Branch string
	// Commit is the branch head after publishing.
	Commit string
	// Changed is false when the output matched the branch and no commit was made.
	Changed bool
	Pushed  bool
	// Files counts paths added, modified or removed by the commit.
	Files int
}

// Publisher commits a site directory into the configured branch.
type Publisher struct {
	cfg    config.PublishConfig
	logger *slog.Logger
	now    func() time.Time
}

// New creates a publisher. cfg is expected to have defaults applied.
func New(cfg config.PublishConfig) *Publisher {
	if cfg.Branch == "" {
		cfg.Branch = config.DefaultPublishBranch
	}
	if cfg.Message == "" {
		cfg.Message = config.DefaultPublishMessage
	}
	return &Publisher{cfg: cfg, logger: slog.Default(), now: time.Now}
}

// WithLogger replaces the logger.
func (p *Publisher) WithLogger(l *slog.Logger) *Publisher {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithClock replaces the clock used for commit timestamps.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	if now != nil {
		p.now = now
	}
	return p
}

// Publish replaces the branch contents with siteDir, commits and pushes.
func (p *Publisher) Publish(ctx context.Context, siteDir string) (Result, error) {
	res := Result{Branch: p.cfg.Branch}

	info, err := os.Stat(siteDir)
	if err != nil || !info.IsDir() {
		return res, errors.NewError(errors.CategoryNotFound, "site output not found; run build first").
			WithContext("path", siteDir).
			Build()
	}

	ws := p.workspace()
	if err := ws.Create(); err != nil {
		return res, errors.FileSystemError("failed to create publish checkout").WithCause(err).Build()
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			p.logger.Warn("Failed to remove publish checkout", logfields.Path(ws.Path()), logfields.Error(err))
		}
	}()
	dir := ws.Path()
	auth := tokenAuth(p.cfg.TokenEnv)
	logger := p.logger.With(logfields.Branch(p.cfg.Branch))

	repo, err := p.openCheckout(dir)
	if err != nil {
		return res, publishError("failed to prepare checkout", err)
	}
	if err := p.checkoutBranch(ctx, repo, auth); err != nil {
		return res, publishError("failed to check out branch", err)
	}

	if err := replaceTree(dir, siteDir); err != nil {
		return res, errors.FileSystemError("failed to copy site into checkout").WithCause(err).
			WithContext("path", dir).
			Build()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return res, publishError("failed to open worktree", err)
	}
	if res.Files, err = stageAll(wt); err != nil {
		return res, publishError("failed to stage changes", err)
	}

	if res.Files > 0 {
		hash, err := wt.Commit(p.cfg.Message, &git.CommitOptions{
			Author: &object.Signature{Name: p.cfg.AuthorName, Email: p.cfg.AuthorEmail, When: p.now()},
		})
		if err != nil {
			return res, publishError("failed to commit", err)
		}
		res.Changed = true
		res.Commit = hash.String()
		logger.Info("Committed site", logfields.Count(res.Files), slog.String("commit", hash.String()[:8]))
	} else {
		if head, err := repo.Head(); err == nil {
			res.Commit = head.Hash().String()
		}
		logger.Info("Site unchanged, nothing to commit")
	}

	if !p.cfg.PushEnabled() || res.Commit == "" {
		return res, nil
	}
	spec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%[1]s:refs/heads/%[1]s", p.cfg.Branch))
	upToDate := false
	err = p.withRetry(ctx, "push", func() error {
		err := repo.PushContext(ctx, &git.PushOptions{
			RemoteName: remoteName,
			RefSpecs:   []gitconfig.RefSpec{spec},
			Auth:       auth,
			Force:      p.cfg.Force,
		})
		if stdErrors.Is(err, git.NoErrAlreadyUpToDate) {
			upToDate = true
			return nil
		}
		return err
	})
	if err != nil {
		return res, publishError("failed to push", err)
	}
	if upToDate {
		logger.Info("Remote already up to date", logfields.URL(p.cfg.Repository))
		return res, nil
	}
	res.Pushed = true
	logger.Info("Pushed site", logfields.URL(p.cfg.Repository))
	return res, nil
}

func (p *Publisher) workspace() *workspace.Manager {
	if p.cfg.CheckoutDir != "" {
		return workspace.NewPersistentManager(p.cfg.CheckoutDir).WithLogger(p.logger)
	}
	return workspace.NewManager("").WithLogger(p.logger)
}

// openCheckout opens or initializes the repository in dir and points origin at
// the configured repository.
func (p *Publisher) openCheckout(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if stdErrors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, err
	}

	remote, err := repo.Remote(remoteName)
	switch {
	case stdErrors.Is(err, git.ErrRemoteNotFound):
	case err != nil:
		return nil, err
	case len(remote.Config().URLs) > 0 && remote.Config().URLs[0] == p.cfg.Repository:
		return repo, nil
	default:
		if err := repo.DeleteRemote(remoteName); err != nil {
			return nil, err
		}
	}
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: remoteName, URLs: []string{p.cfg.Repository}})
	return repo, err
}

// checkoutBranch moves HEAD onto the publish branch. The remote branch wins
// when it exists, then an existing local branch; otherwise HEAD becomes an
// unborn orphan branch.
func (p *Publisher) checkoutBranch(ctx context.Context, repo *git.Repository, auth transport.AuthMethod) error {
	branch := plumbing.NewBranchReferenceName(p.cfg.Branch)
	remoteRef := plumbing.NewRemoteReferenceName(remoteName, p.cfg.Branch)

	err := p.withRetry(ctx, "fetch", func() error {
		err := repo.FetchContext(ctx, &git.FetchOptions{
			RemoteName: remoteName,
			RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(fmt.Sprintf("+%s:%s", branch, remoteRef))},
			Auth:       auth,
			Force:      true,
		})
		switch {
		case err == nil, stdErrors.Is(err, git.NoErrAlreadyUpToDate):
			return nil
		case stdErrors.Is(err, git.NoMatchingRefSpecError{}), stdErrors.Is(err, transport.ErrEmptyRemoteRepository):
			p.logger.Debug("Publish branch does not exist on remote", logfields.Branch(p.cfg.Branch))
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch %s: %w", p.cfg.Branch, err)
	}

	var target plumbing.Hash
	if ref, err := repo.Reference(remoteRef, true); err == nil {
		target = ref.Hash()
	} else if ref, err := repo.Reference(branch, true); err == nil {
		target = ref.Hash()
	}

	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch)); err != nil {
		return err
	}
	if target.IsZero() {
		p.logger.Info("Starting orphan branch", logfields.Branch(p.cfg.Branch))
		return nil
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, target)); err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Reset(&git.ResetOptions{Commit: target, Mode: git.HardReset})
}

// replaceTree empties dir (keeping .git) and copies site into it.
func replaceTree(dir, site string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name() == git.GitDirName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return fileutil.CopyDir(site, dir, git.GitDirName)
}

// stageAll stages every worktree change, removals included, and returns the
// number of paths staged.
func stageAll(wt *git.Worktree) (int, error) {
	status, err := wt.Status()
	if err != nil {
		return 0, err
	}
	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	staged := 0
	for _, path := range paths {
		st := status[path]
		switch st.Worktree {
		case git.Unmodified:
			if st.Staging != git.Unmodified {
				staged++
			}
			continue
		case git.Deleted:
			if _, err := wt.Remove(path); err != nil {
				return staged, fmt.Errorf("remove %s: %w", path, err)
			}
		default:
			if _, err := wt.Add(path); err != nil {
				return staged, fmt.Errorf("add %s: %w", path, err)
			}
		}
		staged++
	}
	return staged, nil
}

func publishError(msg string, err error) error {
	return errors.PublishError(msg).WithCause(err).Build()
}
