// Package processor runs a complete processing session: file metadata
// discovery, feature scanning, attribution of features to files and the
// session document handed to the reviewer.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/bulk-reviewer/brv/internal/annotate"
	"github.com/bulk-reviewer/brv/internal/byterun"
	"github.com/bulk-reviewer/brv/internal/features"
	"github.com/bulk-reviewer/brv/internal/metadata"
	"github.com/bulk-reviewer/brv/internal/session"
	"github.com/bulk-reviewer/brv/internal/store"
	"github.com/bulk-reviewer/brv/internal/tools"
	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// Options describe one processing session.
type Options struct {
	Name        string
	Source      string // directory or disk image
	Destination string // where the session document and reports are written
	TempDir     string // parent of the temporary session database

	DiskImage             bool
	NamedEntityExtraction bool
	SSNMode               int
	RegexFile             string
	Stoplists             string // directory of .txt stoplists
	ScannerReports        string // existing scanner report directory to reuse

	IncludeNetwork bool
	IncludeEXIF    bool
}

// MetadataTool writes the DFXML description of a disk image.
type MetadataTool interface {
	DFXML(ctx context.Context, image, out string) error
}

// FeatureScanner produces one feature file per feature category.
type FeatureScanner interface {
	Run(ctx context.Context, req tools.ScanRequest) error
}

// Paths are the output locations of a session.
type Paths struct {
	Document     string
	Reports      string
	DFXML        string
	ScannerDir   string
	AnnotatedDir string
}

// Result summarizes a finished session.
type Result struct {
	SessionID  int64
	Document   string
	Files      int
	Skipped    int
	Features   features.LoadStats
	Annotation annotate.Stats
}

// Processor runs processing sessions.
type Processor struct {
	opts    Options
	walker  MetadataTool
	scanner FeatureScanner
	logger  hclog.Logger

	openStore func(path string) (store.Repository, error)
}

// New creates a Processor. walker is only used for disk images.
func New(opts Options, walker MetadataTool, scanner FeatureScanner, logger hclog.Logger) *Processor {
	return &Processor{
		opts:    opts,
		walker:  walker,
		scanner: scanner,
		logger:  logger,
		openStore: func(path string) (store.Repository, error) {
			return store.OpenSQLite(path)
		},
	}
}

// Paths returns the output locations for the configured session.
func (p *Processor) Paths() Paths {
	reports := filepath.Join(p.opts.Destination, p.opts.Name+"_reports")
	scannerDir := filepath.Join(reports, "bulk_extractor")
	if p.opts.ScannerReports != "" {
		scannerDir = p.opts.ScannerReports
	}
	return Paths{
		Document:     filepath.Join(p.opts.Destination, p.opts.Name+".json"),
		Reports:      reports,
		DFXML:        filepath.Join(reports, "dfxml.xml"),
		ScannerDir:   scannerDir,
		AnnotatedDir: filepath.Join(reports, "bulk_extractor_annotated"),
	}
}

// Run processes the source and writes the session document.
func (p *Processor) Run(ctx context.Context) (Result, error) {
	var res Result
	paths := p.Paths()

	if err := p.checkOutputs(paths); err != nil {
		return res, err
	}
	for _, dir := range []string{p.opts.Destination, paths.Reports, paths.ScannerDir} {
		if err := files.CreateFolderIfNotExists(dir); err != nil {
			return res, err
		}
	}

	if err := files.CreateFolderIfNotExists(p.opts.TempDir); err != nil {
		return res, err
	}
	tempDir, err := os.MkdirTemp(p.opts.TempDir, "brv-")
	if err != nil {
		return res, fmt.Errorf("failed to create temporary folder: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			p.logger.Warn("unable to delete temporary folder", "path", tempDir, "error", err)
		}
	}()

	repo, err := p.openStore(filepath.Join(tempDir, p.opts.Name+".brv"))
	if err != nil {
		return res, err
	}
	defer repo.Close()

	res.SessionID, err = repo.CreateSession(ctx, store.Session{
		UUID:                  uuid.NewString(),
		Name:                  p.opts.Name,
		SourcePath:            p.opts.Source,
		DiskImage:             p.opts.DiskImage,
		NamedEntityExtraction: p.opts.NamedEntityExtraction,
		RegexFile:             p.opts.RegexFile,
		SSNMode:               p.opts.SSNMode,
		Stoplists:             p.opts.Stoplists,
	})
	if err != nil {
		return res, err
	}

	pair, err := p.discoverFiles(ctx, repo, res.SessionID, paths, &res)
	if err != nil {
		return res, err
	}

	if p.opts.ScannerReports == "" {
		if err := p.scan(ctx, paths.ScannerDir); err != nil {
			return res, err
		}
	}

	if err := p.loadFeatures(ctx, repo, res.SessionID, pair, paths, &res); err != nil {
		return res, err
	}

	doc, err := session.Build(ctx, repo, res.SessionID)
	if err != nil {
		return res, err
	}
	if err := session.Write(paths.Document, doc); err != nil {
		return res, err
	}
	res.Document = paths.Document
	p.logger.Info("created session document", "path", paths.Document,
		"files", res.Files, "features", res.Features.Stored)
	return res, nil
}

// checkOutputs refuses to reuse a session name and requires reused scanner
// reports to exist.
func (p *Processor) checkOutputs(paths Paths) error {
	if _, err := os.Stat(paths.Document); err == nil {
		return fmt.Errorf("%w: %s", brerrors.ErrDuplicateSession, paths.Document)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check session document: %w", err)
	}

	if p.opts.ScannerReports != "" {
		if err := files.ValidateDir(p.opts.ScannerReports); err != nil {
			return fmt.Errorf("%w: scanner reports %s: %v", brerrors.ErrMissingArtifact, p.opts.ScannerReports, err)
		}
	}
	return nil
}

// discoverFiles stores the files of the source. For disk images it also
// returns the byte run index used to attribute features.
func (p *Processor) discoverFiles(ctx context.Context, repo store.Repository, sessionID int64, paths Paths, res *Result) (*byterun.Pair, error) {
	if !p.opts.DiskImage {
		p.logger.Info("writing source file metadata to database", "source", p.opts.Source)
		ing := metadata.NewIngester(repo, sessionID, nil, p.logger)
		if err := ing.IngestDirectory(ctx, p.opts.Source); err != nil {
			return nil, err
		}
		res.Files, res.Skipped = ing.Stored(), ing.Skipped()
		return nil, nil
	}

	if p.walker == nil {
		return nil, fmt.Errorf("no metadata tool configured for disk image processing")
	}
	p.logger.Info("creating DFXML", "image", p.opts.Source, "output", paths.DFXML)
	if err := p.walker.DFXML(ctx, p.opts.Source, paths.DFXML); err != nil {
		return nil, fmt.Errorf("unable to create DFXML: %w", err)
	}

	f, err := os.Open(paths.DFXML)
	if err != nil {
		return nil, fmt.Errorf("%w: DFXML %s: %v", brerrors.ErrMissingArtifact, paths.DFXML, err)
	}
	defer f.Close()

	p.logger.Info("parsing DFXML to database", "path", paths.DFXML)
	pair := byterun.NewPair()
	ing := metadata.NewIngester(repo, sessionID, pair, p.logger)
	if err := ing.IngestDFXML(ctx, f); err != nil {
		return nil, fmt.Errorf("error parsing DFXML file %s: %w", paths.DFXML, err)
	}
	res.Files, res.Skipped = ing.Stored(), ing.Skipped()
	if res.Files == 0 {
		return nil, fmt.Errorf("%w: file system may be unsupported by the metadata tool", brerrors.ErrEmptyIndex)
	}
	return pair, nil
}

func (p *Processor) scan(ctx context.Context, outDir string) error {
	if p.scanner == nil {
		return fmt.Errorf("no feature scanner configured")
	}
	stoplists, err := tools.StoplistFiles(p.opts.Stoplists)
	if err != nil {
		return err
	}
	p.logger.Info("running feature scanner", "source", p.opts.Source, "output", outDir)
	err = p.scanner.Run(ctx, tools.ScanRequest{
		Source:    p.opts.Source,
		OutputDir: outDir,
		DiskImage: p.opts.DiskImage,
		SSNMode:   p.opts.SSNMode,
		RegexFile: p.opts.RegexFile,
		Stoplists: stoplists,
	})
	if err != nil {
		return fmt.Errorf("error running feature scanner: %w", err)
	}
	return nil
}

func (p *Processor) loadFeatures(ctx context.Context, repo store.Repository, sessionID int64, pair *byterun.Pair, paths Paths, res *Result) error {
	selectOpts := features.SelectOptions{
		IncludeNetwork: p.opts.IncludeNetwork,
		IncludeEXIF:    p.opts.IncludeEXIF,
	}
	loader := features.NewLoader(repo, sessionID, p.opts.Source, p.logger)

	if !p.opts.DiskImage {
		p.logger.Info("reading feature files to database", "path", paths.ScannerDir)
		stats, err := loader.LoadDir(ctx, paths.ScannerDir, features.ModeDirectory, selectOpts)
		res.Features = stats
		return err
	}

	p.logger.Info("annotating feature files", "path", paths.ScannerDir, "output", paths.AnnotatedDir)
	st, err := annotate.New(pair, p.logger).AnnotateDir(ctx, paths.ScannerDir, paths.AnnotatedDir)
	res.Annotation = st
	if err != nil {
		return err
	}

	p.logger.Info("reading feature files to database", "path", paths.AnnotatedDir)
	stats, err := loader.LoadDir(ctx, paths.AnnotatedDir, features.ModeAnnotated, selectOpts)
	res.Features = stats
	return err
}
