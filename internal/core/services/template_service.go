package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// templateFile is the on-disk schema. Unknown keys are rejected at decode time.
type templateFile struct {
	Templates []templateDoc `yaml:"templates" validate:"required,min=1,dive"`
}

type templateDoc struct {
	Name        string    `yaml:"name" validate:"required,max=100"`
	Description string    `yaml:"description" validate:"max=500"`
	Lines       []lineDoc `yaml:"lines" validate:"min=2,dive"`
}

type lineDoc struct {
	AccountID   string `yaml:"account_id" validate:"required"`
	Description string `yaml:"description" validate:"max=500"`
	Debit       string `yaml:"debit"`
	Credit      string `yaml:"credit"`
	Reference   string `yaml:"reference" validate:"max=100"`
}

type templateService struct {
	BaseService
	journals portssvc.JournalWriterSvc

	mu        sync.RWMutex
	templates map[string]domain.JournalTemplate
}

func NewTemplateService(journals portssvc.JournalWriterSvc) portssvc.TemplateSvcFacade {
	return &templateService{
		journals:  journals,
		templates: make(map[string]domain.JournalTemplate),
	}
}

var _ portssvc.TemplateSvcFacade = (*templateService)(nil)

// LoadTemplates decodes a YAML document of templates. Every template must validate
// before any is registered; a template replaces an earlier one of the same name.
func (s *templateService) LoadTemplates(r io.Reader) ([]domain.JournalTemplate, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file templateFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: template document is empty", apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("%w: malformed template document: %v", apperrors.ErrValidation, err)
	}
	if err := validateStruct(file); err != nil {
		return nil, err
	}

	loaded := make([]domain.JournalTemplate, 0, len(file.Templates))
	seen := make(map[string]bool, len(file.Templates))
	for _, doc := range file.Templates {
		tpl, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		if seen[tpl.Name] {
			return nil, fmt.Errorf("%w: template %q is defined twice", apperrors.ErrValidation, tpl.Name)
		}
		seen[tpl.Name] = true
		loaded = append(loaded, tpl)
	}

	s.mu.Lock()
	for _, tpl := range loaded {
		s.templates[tpl.Name] = tpl
	}
	s.mu.Unlock()

	slog.Default().Info("Journal templates loaded", slog.Int("count", len(loaded)))
	return loaded, nil
}

// toDomain requires exactly one non-zero side per line and balanced totals.
func (d templateDoc) toDomain() (domain.JournalTemplate, error) {
	tpl := domain.JournalTemplate{
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		Lines:       make([]domain.LineTemplate, 0, len(d.Lines)),
	}
	debits, credits := decimal.Zero, decimal.Zero
	for i, l := range d.Lines {
		debit, err := parseTemplateAmount(l.Debit)
		if err != nil {
			return tpl, fmt.Errorf("%w: template %q line %d debit: %v", apperrors.ErrValidation, tpl.Name, i+1, err)
		}
		credit, err := parseTemplateAmount(l.Credit)
		if err != nil {
			return tpl, fmt.Errorf("%w: template %q line %d credit: %v", apperrors.ErrValidation, tpl.Name, i+1, err)
		}
		if debit.IsPositive() == credit.IsPositive() {
			return tpl, fmt.Errorf("%w: template %q line %d must carry exactly one of debit or credit", apperrors.ErrValidation, tpl.Name, i+1)
		}
		debits = debits.Add(debit)
		credits = credits.Add(credit)
		tpl.Lines = append(tpl.Lines, domain.LineTemplate{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       debit,
			Credit:      credit,
			Reference:   l.Reference,
		})
	}
	if !debits.Equal(credits) {
		return tpl, fmt.Errorf("%w: template %q debits %s do not equal credits %s", apperrors.ErrUnbalancedEntry, tpl.Name, debits, credits)
	}
	return tpl, nil
}

func parseTemplateAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, errors.New("amount is negative")
	}
	return amount, nil
}

func (s *templateService) ListTemplates() []domain.JournalTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.JournalTemplate, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *templateService) CreateFromTemplate(ctx context.Context, name string, date time.Time, actorID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	tpl, ok := s.templates[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: journal template %q", apperrors.ErrNotFound, name)
	}

	description := tpl.Description
	if description == "" {
		description = tpl.Name
	}
	entry := domain.JournalEntry{
		EntryDate:   date,
		Description: description,
		EntryType:   domain.JournalTypeTemplate,
		Status:      domain.StatusDraft,
		Lines:       make([]domain.JournalLine, 0, len(tpl.Lines)),
	}
	for _, l := range tpl.Lines {
		lineDesc := l.Description
		if l.Reference != "" {
			lineDesc = strings.TrimSpace(lineDesc + " [" + l.Reference + "]")
		}
		entry.Lines = append(entry.Lines, domain.JournalLine{
			AccountID:    l.AccountID,
			Description:  lineDesc,
			DebitAmount:  l.Debit,
			CreditAmount: l.Credit,
		})
	}

	created, err := s.journals.CreateJournal(ctx, entry, actorID)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Journal created from template", slog.String("template", name), slog.String("journal_id", created.JournalID))
	return created, nil
}
