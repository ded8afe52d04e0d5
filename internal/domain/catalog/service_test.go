package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	byID   map[uuid.UUID]*Procedure
	byCode map[string]*Procedure
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: map[uuid.UUID]*Procedure{}, byCode: map[string]*Procedure{}}
}

func (m *mockRepo) Create(_ context.Context, p *Procedure) error {
	if _, ok := m.byCode[p.Code]; ok {
		return fmt.Errorf("duplicate code")
	}
	p.ID = uuid.New()
	m.byID[p.ID] = p
	m.byCode[p.Code] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Procedure, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Procedure, error) {
	p, ok := m.byCode[code]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Procedure) error {
	m.byID[p.ID] = p
	m.byCode[p.Code] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if p, ok := m.byID[id]; ok {
		delete(m.byCode, p.Code)
		delete(m.byID, id)
	}
	return nil
}

func (m *mockRepo) List(_ context.Context, _, _ int) ([]*Procedure, int, error) {
	var items []*Procedure
	for _, p := range m.byID {
		items = append(items, p)
	}
	return items, len(items), nil
}

func (m *mockRepo) Codes(_ context.Context) (map[string]bool, error) {
	codes := map[string]bool{}
	for code, p := range m.byCode {
		if p.Active {
			codes[code] = true
		}
	}
	return codes, nil
}

func TestCreateProcedure(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Procedure{Code: "0301010072", Name: "Consulta odontológica"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.BPAKind != BPAIndividualized {
		t.Errorf("expected default kind %s, got %s", BPAIndividualized, p.BPAKind)
	}
	if !p.Active {
		t.Error("new procedures start active")
	}
}

func TestCreateProcedureInvalidKind(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Create(context.Background(), &Procedure{Code: "0301010072", Name: "Consulta", BPAKind: "BPA-X"})
	if err == nil {
		t.Fatal("expected error for invalid bpa_kind")
	}
}

func TestCreateProcedureMissingCode(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Create(context.Background(), &Procedure{Name: "Consulta"})
	if err == nil {
		t.Fatal("expected error for missing code")
	}
}

func TestCodesOnlyActive(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Procedure{Code: "0301010072", Name: "Consulta"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Active = false
	if err := svc.Update(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	codes, err := repo.Codes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codes["0301010072"] {
		t.Error("inactive procedures must not appear in the reference set")
	}
}
