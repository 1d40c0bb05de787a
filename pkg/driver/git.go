package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// CorpusFS is the filesystem fixtures are read from, plus the commit it was
// checked out at when the corpus lives in git.
type CorpusFS struct {
	FS     billy.Filesystem
	Commit string
}

// OpenCorpusFS resolves where corpus fixture files live: a git checkout held
// in memory when the manifest names a repository, otherwise the manifest's
// directory on disk.
func OpenCorpusFS(ctx context.Context, corpus *Corpus) (*CorpusFS, error) {
	if corpus == nil {
		return nil, fmt.Errorf("corpus: nil manifest")
	}
	if corpus.Source != nil && corpus.Source.Git != "" {
		return FetchGitCorpus(ctx, corpus.Source)
	}
	root := "."
	if corpus.Path != "" {
		root = filepath.Dir(corpus.Path)
	}
	if corpus.Source != nil && corpus.Source.Dir != "" {
		root = filepath.Join(root, filepath.FromSlash(corpus.Source.Dir))
	}
	return &CorpusFS{FS: osfs.New(root)}, nil
}

// FetchGitCorpus clones src.Git into memory and checks out the requested
// branch, tag or revision (HEAD when none is given).
func FetchGitCorpus(ctx context.Context, src *CorpusSource) (*CorpusFS, error) {
	url := strings.TrimSpace(src.Git)
	if url == "" {
		return nil, fmt.Errorf("corpus: git URL required")
	}
	repo, err := git.CloneContext(ctx, memory.NewStorage(), memfs.New(), &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		return nil, fmt.Errorf("git clone %s: %w", url, err)
	}

	var hash plumbing.Hash
	if revision, ok := gitRevisionFromSource(src); ok {
		resolved, err := repo.ResolveRevision(revision)
		if err != nil {
			return nil, fmt.Errorf("resolve revision %s: %w", revision, err)
		}
		hash = *resolved
	} else {
		head, err := repo.Head()
		if err != nil {
			return nil, fmt.Errorf("git head %s: %w", url, err)
		}
		hash = head.Hash()
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return nil, fmt.Errorf("git checkout %s: %w", hash, err)
	}

	fs := worktree.Filesystem
	if dir := strings.Trim(src.Dir, "/"); dir != "" {
		if _, err := fs.Stat(dir); err != nil {
			return nil, fmt.Errorf("corpus: directory %s not found at %s: %w", dir, hash, err)
		}
		if fs, err = fs.Chroot(dir); err != nil {
			return nil, fmt.Errorf("corpus: enter %s: %w", dir, err)
		}
	}
	return &CorpusFS{FS: fs, Commit: hash.String()}, nil
}

// gitRevisionFromSource maps the manifest ref to a revision. A fresh clone
// only has remote-tracking branches, so branches resolve under origin.
func gitRevisionFromSource(src *CorpusSource) (plumbing.Revision, bool) {
	if rev := strings.TrimSpace(src.Rev); rev != "" {
		return plumbing.Revision(rev), true
	}
	if tag := strings.TrimSpace(src.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), true
	}
	if branch := strings.TrimSpace(src.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), true
	}
	return "", false
}
