package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"slidedeck/database"
	"slidedeck/export"
	"slidedeck/importer"
	"slidedeck/model"
	"slidedeck/pack"
	"slidedeck/store"
)

func TestServiceError_Format(t *testing.T) {
	tests := []struct {
		service, operation, target string
		err                        error
		want                       string
	}{
		{"decks", "LoadDeck", "", fmt.Errorf("not found"), "[decks.LoadDeck] not found"},
		{"decks", "LoadDeck", "pitch", fmt.Errorf("not found"), `[decks.LoadDeck] "pitch": not found`},
		{"", "Save", "", fmt.Errorf("disk full"), "[.Save] disk full"},
		{"export", "", "", fmt.Errorf("timeout"), "[export.] timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			se := &ServiceError{Service: tt.service, Operation: tt.operation, Target: tt.target, Err: tt.err}
			if got := se.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	if WrapError("decks", "SaveDeck", nil) != nil {
		t.Error("nil error must stay nil")
	}
	wrapped := WrapError("decks", "LoadDeck", store.ErrNotFound)
	if !errors.Is(wrapped, store.ErrNotFound) {
		t.Error("errors.Is should see through ServiceError")
	}
	var se *ServiceError
	if !errors.As(wrapped, &se) || se.Service != "decks" || se.Operation != "LoadDeck" {
		t.Errorf("errors.As = %+v", se)
	}
}

func TestWrapTargetError_KeepsInnermostContext(t *testing.T) {
	inner := WrapTargetError(serviceDecks, "LoadDeck", "pitch", store.ErrNotFound)
	outer := WrapTargetError(serviceDecks, "SaveVersion", "pitch", inner)
	if outer != inner {
		t.Errorf("same deck context wrapped twice: %v", outer)
	}
	if got := outer.Error(); !strings.HasPrefix(got, `[decks.LoadDeck] "pitch": `) {
		t.Errorf("Error() = %q", got)
	}

	other := WrapTargetError(serviceExport, "ExportDeck", "", inner)
	var se *ServiceError
	if !errors.As(other, &se) || se.Service != serviceExport {
		t.Errorf("different service should wrap: %v", other)
	}
	if exitCode(other) != exitNotFound {
		t.Errorf("exitCode(%v) = %d", other, exitCode(other))
	}
}

func TestDeckFacade_ErrorsNameTheDeck(t *testing.T) {
	d := NewDeckFacadeService(NewConfigService(nil), nil)
	err := d.SaveDeck("pitch", model.New(model.English))
	var se *ServiceError
	if !errors.As(err, &se) || se.Service != serviceDecks || se.Operation != "SaveDeck" || se.Target != "pitch" {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, errDeckStoreUnavailable) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestWrapOperationError(t *testing.T) {
	if WrapOperationError("write deck.json", nil) != nil {
		t.Error("nil error must stay nil")
	}
	err := WrapOperationError("write deck.json", pack.ErrWrongPassword)
	if err.Error() != "failed to write deck.json: incorrect password" || !errors.Is(err, pack.ErrWrongPassword) {
		t.Errorf("got %v", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{errUsage, exitUsage},
		{fmt.Errorf("%w: \"gif\"", export.ErrUnknownFormat), exitUsage},
		{WrapError("import", "ImportData", importer.ErrUnsupportedFile), exitBadInput},
		{WrapError("import", "ImportData", pack.ErrPasswordRequired), exitBadInput},
		{WrapError("decks", "LoadDeck", store.ErrNotFound), exitNotFound},
		{WrapError("decks", "RestoreVersion", database.ErrVersionNotFound), exitNotFound},
		{WrapOperationError("write x.txt", &ValidationError{Field: "filename"}), exitUsage},
		{errors.New("disk on fire"), exitFailure},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// Property: the message is always [Service.Operation] cause and the cause
// stays reachable.
func TestProperty_ServiceErrorFormat(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		service := rapid.String().Draw(t, "service")
		operation := rapid.String().Draw(t, "operation")
		msg := rapid.String().Draw(t, "msg")

		original := errors.New(msg)
		wrapped := WrapError(service, operation, original)
		if want := fmt.Sprintf("[%s.%s] %s", service, operation, msg); wrapped.Error() != want {
			t.Fatalf("Error() = %q, want %q", wrapped.Error(), want)
		}
		if !errors.Is(wrapped, original) {
			t.Fatal("cause lost")
		}
	})
}
