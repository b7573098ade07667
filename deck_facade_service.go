package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"slidedeck/database"
	"slidedeck/editor"
	"slidedeck/i18n"
	"slidedeck/model"
	"slidedeck/native"
	"slidedeck/store"
)

// DeckManager stores named decks and their saved versions.
type DeckManager interface {
	SaveDeck(name string, p model.Presentation) error
	LoadDeck(name string) (model.Presentation, error)
	ListDecks() ([]store.Entry, error)
	DeleteDeck(name string) error
	SaveVersion(name, description, author string) (database.Version, error)
	ListVersions(name string) ([]database.Version, error)
	RestoreVersion(id string) (database.Version, error)
	OpenSession(name string) (*editor.Session, error)
}

var errDeckStoreUnavailable = errors.New("deck store not initialized")

// DeckFacadeService wires the pebble deck store and the sqlite version
// history behind one facade.
type DeckFacadeService struct {
	ctx      context.Context
	config   ConfigProvider
	logger   func(string)
	mu       sync.RWMutex
	store    *store.Store
	db       *sql.DB
	versions *database.VersionService
	autosave time.Duration
	history  int
}

// NewDeckFacadeService creates the facade. Storage is opened by Initialize.
func NewDeckFacadeService(cfg ConfigProvider, logger func(string)) *DeckFacadeService {
	return &DeckFacadeService{config: cfg, logger: logger}
}

func (d *DeckFacadeService) Name() string {
	return serviceDecks
}

// Initialize opens the deck store under <dataDir>/decks and the version
// database in dataDir.
func (d *DeckFacadeService) Initialize(ctx context.Context) error {
	cfg, err := d.config.GetEffectiveConfig()
	if err != nil {
		return WrapError(serviceDecks, "Initialize", err)
	}
	st, err := store.Open(filepath.Join(cfg.DataDir, "decks"), store.Options{Logger: d.logger})
	if err != nil {
		return WrapError(serviceDecks, "Initialize", err)
	}
	db, err := database.InitDB(cfg.DataDir, d.logger)
	if err != nil {
		st.Close()
		return WrapError(serviceDecks, "Initialize", err)
	}

	d.mu.Lock()
	d.ctx = ctx
	d.store = st
	d.db = db
	d.versions = database.NewVersionService(db, cfg.VersionLimit)
	d.autosave = time.Duration(cfg.AutosaveSeconds) * time.Second
	d.history = cfg.HistoryLimit
	d.mu.Unlock()

	d.log(fmt.Sprintf("DeckFacadeService initialized in %s", cfg.DataDir))
	return nil
}

// Shutdown closes the store and the database.
func (d *DeckFacadeService) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	if d.store != nil {
		errs = append(errs, d.store.Close())
		d.store = nil
	}
	if d.db != nil {
		errs = append(errs, d.db.Close())
		d.db = nil
	}
	d.versions = nil
	return errors.Join(errs...)
}

func (d *DeckFacadeService) log(msg string) {
	if d.logger != nil {
		d.logger(msg)
	}
}

func (d *DeckFacadeService) deps() (*store.Store, *database.VersionService, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.store == nil || d.versions == nil {
		return nil, nil, errDeckStoreUnavailable
	}
	return d.store, d.versions, nil
}

// SaveDeck stores p under name in the native format.
func (d *DeckFacadeService) SaveDeck(name string, p model.Presentation) error {
	st, _, err := d.deps()
	if err != nil {
		return WrapTargetError(serviceDecks, "SaveDeck", name, err)
	}
	data, err := native.Encode(p)
	if err != nil {
		return WrapTargetError(serviceDecks, "SaveDeck", name, err)
	}
	return WrapTargetError(serviceDecks, "SaveDeck", name, st.Save(name, data))
}

// LoadDeck reads the deck stored under name.
func (d *DeckFacadeService) LoadDeck(name string) (model.Presentation, error) {
	st, _, err := d.deps()
	if err != nil {
		return model.Presentation{}, WrapTargetError(serviceDecks, "LoadDeck", name, err)
	}
	data, err := st.Load(name)
	if err != nil {
		return model.Presentation{}, WrapTargetError(serviceDecks, "LoadDeck", name, err)
	}
	p, err := native.Decode(data)
	if err != nil {
		return model.Presentation{}, WrapTargetError(serviceDecks, "LoadDeck", name, err)
	}
	return p, nil
}

// ListDecks lists stored decks, most recently saved first.
func (d *DeckFacadeService) ListDecks() ([]store.Entry, error) {
	st, _, err := d.deps()
	if err != nil {
		return nil, WrapError(serviceDecks, "ListDecks", err)
	}
	entries, err := st.List()
	return entries, WrapError(serviceDecks, "ListDecks", err)
}

// DeleteDeck removes a stored deck. Its versions are kept.
func (d *DeckFacadeService) DeleteDeck(name string) error {
	st, _, err := d.deps()
	if err != nil {
		return WrapTargetError(serviceDecks, "DeleteDeck", name, err)
	}
	return WrapTargetError(serviceDecks, "DeleteDeck", name, st.Delete(name))
}

// SaveVersion records the stored deck name as a new version.
func (d *DeckFacadeService) SaveVersion(name, description, author string) (database.Version, error) {
	_, versions, err := d.deps()
	if err != nil {
		return database.Version{}, WrapTargetError(serviceDecks, "SaveVersion", name, err)
	}
	p, err := d.LoadDeck(name)
	if err != nil {
		return database.Version{}, err
	}
	v, err := versions.SaveVersion(name, description, author, p)
	if err != nil {
		return database.Version{}, WrapTargetError(serviceDecks, "SaveVersion", name, err)
	}
	d.log(i18n.T("version.saved", v.Description, name))
	return v, nil
}

// ListVersions lists the versions of a deck, newest first.
func (d *DeckFacadeService) ListVersions(name string) ([]database.Version, error) {
	_, versions, err := d.deps()
	if err != nil {
		return nil, WrapTargetError(serviceDecks, "ListVersions", name, err)
	}
	list, err := versions.ListVersions(name)
	return list, WrapTargetError(serviceDecks, "ListVersions", name, err)
}

// RestoreVersion writes version id back over its deck.
func (d *DeckFacadeService) RestoreVersion(id string) (database.Version, error) {
	_, versions, err := d.deps()
	if err != nil {
		return database.Version{}, WrapTargetError(serviceDecks, "RestoreVersion", id, err)
	}
	p, v, err := versions.LoadVersion(id)
	if err != nil {
		return database.Version{}, WrapTargetError(serviceDecks, "RestoreVersion", id, err)
	}
	if err := d.SaveDeck(v.DeckName, p); err != nil {
		return database.Version{}, err
	}
	d.log(i18n.T("version.restored", v.Description))
	return v, nil
}

// OpenSession starts an editing session on the deck name, or on a new deck
// when nothing is stored under it yet.
func (d *DeckFacadeService) OpenSession(name string) (*editor.Session, error) {
	p, err := d.LoadDeck(name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	d.mu.RLock()
	limit := d.history
	d.mu.RUnlock()
	return editor.NewSession(p, editor.Options{
		Defaults:     i18n.SlideDefaults(),
		HistoryLimit: limit,
		Logger:       d.logger,
	}), nil
}

// StartAutosave saves s under name at the configured interval until ctx is
// done. It returns nil when autosave is disabled.
func (d *DeckFacadeService) StartAutosave(ctx context.Context, s *editor.Session, name string) (<-chan struct{}, error) {
	st, _, err := d.deps()
	if err != nil {
		return nil, WrapTargetError(serviceDecks, "StartAutosave", name, err)
	}
	d.mu.RLock()
	interval := d.autosave
	d.mu.RUnlock()
	if interval <= 0 {
		return nil, nil
	}
	return s.StartAutosave(ctx, interval, st, name), nil
}
