package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"slidedeck/i18n"
	"slidedeck/importer"
)

// ImportRecorder is told about every finished import.
type ImportRecorder interface {
	ImportFinished(kind importer.Kind, err error)
}

// ImportFacadeService reads presentation files from disk.
type ImportFacadeService struct {
	ctx      context.Context
	recorder ImportRecorder
	logger   func(string)
}

// NewImportFacadeService creates the facade. recorder may be nil.
func NewImportFacadeService(recorder ImportRecorder, logger func(string)) *ImportFacadeService {
	return &ImportFacadeService{recorder: recorder, logger: logger}
}

func (s *ImportFacadeService) Name() string {
	return serviceImport
}

func (s *ImportFacadeService) Initialize(ctx context.Context) error {
	s.ctx = ctx
	return nil
}

func (s *ImportFacadeService) Shutdown() error {
	return nil
}

func (s *ImportFacadeService) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}

// ImportFile imports the file at path. The file kind follows its
// extension; password opens encrypted packages.
func (s *ImportFacadeService) ImportFile(path, password string) (importer.Result, error) {
	kind, _ := importer.KindFor(path)
	info, err := os.Stat(path)
	if err != nil {
		return importer.Result{}, WrapTargetError(serviceImport, "ImportFile", path, err)
	}
	if err := ValidateFileSize(info.Size(), MaxImportBytes); err != nil {
		return importer.Result{}, WrapTargetError(serviceImport, "ImportFile", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return importer.Result{}, WrapTargetError(serviceImport, "ImportFile", path, err)
	}
	res, err := s.ImportData(filepath.Base(path), data, password)
	if err != nil {
		return importer.Result{}, err
	}
	s.log(fmt.Sprintf("[IMPORT] %s (%s, %s): %s", filepath.Base(path), kind,
		humanize.Bytes(uint64(len(data))), i18n.T("import.success", res.Presentation.Len())))
	return res, nil
}

// ImportData imports data as if read from a file called filename.
func (s *ImportFacadeService) ImportData(filename string, data []byte, password string) (importer.Result, error) {
	kind, _ := importer.KindFor(filename)
	res, err := importer.Import(filename, data, importer.Options{
		Defaults: i18n.SlideDefaults(),
		Password: password,
	})
	if s.recorder != nil {
		s.recorder.ImportFinished(kind, err)
	}
	if err != nil {
		s.log(i18n.T("import.failed", err.Error()))
		return importer.Result{}, WrapTargetError(serviceImport, "ImportData", filename, err)
	}
	for _, w := range res.Warnings {
		s.log("[IMPORT] " + w)
	}
	return res, nil
}
