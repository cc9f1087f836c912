package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookbright/internal/domain"
	"bookbright/internal/fetcher"
	applog "bookbright/internal/log"
	"bookbright/internal/providers"
	"bookbright/internal/repos"
	"bookbright/internal/urlnorm"

	"github.com/google/uuid"
)

type ImportStatus string

const (
	StatusSuccess ImportStatus = "success"
	StatusWarning ImportStatus = "warning"
	StatusError   ImportStatus = "error"
)

// ErrorKind is the closed set of reasons an import item did not succeed.
type ErrorKind string

const (
	KindUnsupported  ErrorKind = "unsupported_provider"
	KindBlocked      ErrorKind = "blocked"
	KindNetwork      ErrorKind = "network"
	KindInsufficient ErrorKind = "insufficient_data"
	KindDuplicate    ErrorKind = "duplicate"
	KindStorage      ErrorKind = "storage"
	KindUnknown      ErrorKind = "unknown"
)

type kindInfo struct {
	status  ImportStatus
	message string
	log     func(action string, err error, fields map[string]any)
}

func warnLog(action string, err error, fields map[string]any)  { applog.Warn(nil, action, err, fields) }
func errorLog(action string, err error, fields map[string]any) { applog.Error(nil, action, err, fields) }
func infoLog(action string, err error, fields map[string]any) {
	if err != nil {
		fields["err"] = err.Error()
	}
	applog.Info(nil, action, fields)
}

var kinds = map[ErrorKind]kindInfo{
	KindUnsupported:  {StatusError, "Fant ingen leverandør som støtter denne URL-en.", warnLog},
	KindBlocked:      {StatusError, "Leverandøren blokkerte forespørselen (bot-beskyttelse). Prøv igjen senere.", warnLog},
	KindNetwork:      {StatusError, "Kunne ikke hente produktsiden. Sjekk nettverket og prøv igjen.", warnLog},
	KindInsufficient: {StatusError, "Fant ikke nok produktdata på siden til å opprette et produkt.", warnLog},
	KindDuplicate:    {StatusWarning, "Produktet finnes allerede i katalogen.", infoLog},
	KindStorage:      {StatusError, "Kunne ikke lagre produktet i databasen.", errorLog},
	KindUnknown:      {StatusError, "En uventet feil oppstod under import.", errorLog},
}

// Message is the user-facing text for k.
func (k ErrorKind) Message() string { return kinds[k].message }

const (
	MsgImported       = "Produktet ble importert."
	WarnNoImages      = "Ingen bilder funnet for produktet"
	WarnNotProductURL = "URL-en ser ikke ut som en produktside"
)

// Classify maps an error from any pipeline stage onto an ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, repos.ErrDuplicateProduct):
		return KindDuplicate
	case errors.Is(err, fetcher.ErrBlocked):
		return KindBlocked
	case errors.Is(err, providers.ErrInsufficientData):
		return KindInsufficient
	case errors.Is(err, fetcher.ErrNetwork), errors.Is(err, fetcher.ErrClientStatus),
		errors.Is(err, fetcher.ErrBodyTooLarge),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindNetwork
	}
	return KindUnknown
}

// ImportTarget is one URL to import, with an optional provider name.
type ImportTarget struct {
	URL      string
	Provider string
}

// BulkImportResult reports the outcome for one input URL.
type BulkImportResult struct {
	InputURL      string       `json:"url"`
	NormalizedURL string       `json:"normalizedUrl"`
	Provider      string       `json:"provider,omitempty"`
	Status        ImportStatus `json:"status"`
	Kind          ErrorKind    `json:"kind,omitempty"`
	Message       string       `json:"message"`
	ProductID     string       `json:"productId,omitempty"`
	Warnings      []string     `json:"warnings,omitempty"`
}

// ProductStore is the part of the catalog store the importer writes to.
type ProductStore interface {
	FindBySupplierURL(ctx context.Context, url string) (string, error)
	Create(ctx context.Context, p *domain.CatalogProduct) error
}

type ImportService struct {
	Registry *providers.Registry
	Store    ProductStore
	Pricing  Pricing
	// Delay is waited between consecutive URLs of a batch.
	Delay time.Duration
}

func NewImportService(reg *providers.Registry, store ProductStore, pricing Pricing, delay time.Duration) *ImportService {
	return &ImportService{Registry: reg, Store: store, Pricing: pricing, Delay: delay}
}

// Import processes urls one at a time. It always returns one result per
// input URL; a failing URL never stops the batch.
func (s *ImportService) Import(ctx context.Context, urls []string, provider string) []BulkImportResult {
	targets := make([]ImportTarget, len(urls))
	for i, u := range urls {
		targets[i] = ImportTarget{URL: u, Provider: provider}
	}
	return s.ImportTargets(ctx, targets)
}

func (s *ImportService) ImportTargets(ctx context.Context, targets []ImportTarget) []BulkImportResult {
	batch := uuid.NewString()
	started := time.Now()
	results := make([]BulkImportResult, 0, len(targets))
	for i, t := range targets {
		results = append(results, s.importOne(ctx, batch, t))
		if i < len(targets)-1 && s.Delay > 0 {
			_ = wait(ctx, s.Delay)
		}
	}

	counts := map[ImportStatus]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	applog.Audit(nil, "import.batch.done", map[string]any{
		"batch":    batch,
		"total":    len(results),
		"success":  counts[StatusSuccess],
		"warning":  counts[StatusWarning],
		"error":    counts[StatusError],
		"duration": time.Since(started).String(),
	})
	return results
}

func (s *ImportService) importOne(ctx context.Context, batch string, t ImportTarget) (res BulkImportResult) {
	res = BulkImportResult{InputURL: t.URL, NormalizedURL: urlnorm.Normalize(t.URL)}
	fields := map[string]any{"batch": batch, "url": t.URL}

	defer func() {
		if r := recover(); r != nil {
			res = s.fail(res, KindUnknown, fmt.Errorf("panic: %v", r), fields)
		}
	}()

	p := s.Registry.ForURL(t.URL, t.Provider)
	if p == nil {
		res = s.fail(res, KindUnsupported, nil, fields)
		res.Message = fmt.Sprintf("%s Støttede leverandører: %s", res.Message, strings.Join(s.Registry.Names(), ", "))
		return res
	}
	res.Provider = p.Name()
	fields["provider"] = p.Name()
	if c, ok := p.(providers.ProductPageChecker); ok && !c.LooksLikeProductPage(res.NormalizedURL) {
		res.Warnings = append(res.Warnings, WarnNotProductURL)
	}

	raw, err := p.FetchProduct(ctx, res.NormalizedURL)
	if err != nil {
		return s.fail(res, Classify(err), err, fields)
	}
	mapped, err := p.MapToProduct(raw, res.NormalizedURL)
	if err != nil {
		return s.fail(res, Classify(err), err, fields)
	}
	fields["outcome"] = string(mapped.Outcome)

	if id, err := s.Store.FindBySupplierURL(ctx, res.NormalizedURL); err != nil {
		return s.fail(res, KindStorage, err, fields)
	} else if id != "" {
		res.ProductID = id
		return s.fail(res, KindDuplicate, nil, fields)
	}

	cp, warnings := s.buildProduct(mapped, res.NormalizedURL)
	if err := s.Store.Create(ctx, cp); err != nil {
		if errors.Is(err, repos.ErrDuplicateProduct) {
			return s.fail(res, KindDuplicate, err, fields)
		}
		return s.fail(res, KindStorage, err, fields)
	}

	res.Status = StatusSuccess
	res.Message = MsgImported
	res.ProductID = cp.ID
	res.Warnings = append(res.Warnings, mapped.Warnings...)
	res.Warnings = append(res.Warnings, warnings...)
	fields["product_id"] = cp.ID
	fields["sku"] = cp.SKU
	fields["warnings"] = len(res.Warnings)
	applog.Audit(nil, "import.item.success", fields)
	return res
}

func (s *ImportService) fail(res BulkImportResult, kind ErrorKind, err error, fields map[string]any) BulkImportResult {
	info, ok := kinds[kind]
	if !ok {
		kind, info = KindUnknown, kinds[KindUnknown]
	}
	res.Status = info.status
	res.Kind = kind
	res.Message = info.message
	fields["kind"] = string(kind)
	info.log("import.item."+string(kind), err, fields)
	return res
}

// buildProduct converts a mapped product into catalog rows and returns the
// warnings raised on the way.
func (s *ImportService) buildProduct(m *providers.MappedProduct, normalizedURL string) (*domain.CatalogProduct, []string) {
	var warnings []string
	source := m.Price.Amount
	currency := SourceCurrency(m.Price.Currency)
	q := s.Pricing.Quote(source, currency)
	switch {
	case q.UnknownCurrency:
		warnings = append(warnings, fmt.Sprintf("Ukjent valuta %s – standardpris på %s NOK ble brukt", currency, s.Pricing.DefaultBasePrice.String()))
	case q.Defaulted:
		warnings = append(warnings, fmt.Sprintf("Pris mangler – standardpris på %s NOK ble brukt", s.Pricing.DefaultBasePrice.String()))
	}
	if s.Pricing.Suspicious(source, currency) {
		warnings = append(warnings, fmt.Sprintf("Mistenkelig lav pris (%s %s) – kontroller prisen", source.StringFixed(2), currency))
	}

	images := CollectImages(m)
	if len(images) == 0 {
		warnings = append(warnings, WarnNoImages)
	}

	name := ImproveTitle(m.Title)
	category := Categorize(name)
	sku := ProductSKU(m.Supplier, normalizedURL)
	desc := m.Description
	if desc == "" {
		desc = name
	}

	cp := &domain.CatalogProduct{Product: domain.Product{
		ID:               uuid.NewString(),
		Slug:             NewSlug(name),
		SKU:              sku,
		Name:             name,
		Description:      desc,
		Price:            q.Selling,
		CompareAtPrice:   q.CompareAt,
		SupplierPrice:    q.Base,
		SupplierCurrency: currency,
		ImagesJSON:       mustJSON(images),
		TagsJSON:         mustJSON([]string{m.Supplier, category}),
		SpecsJSON:        mustJSON(m.Specs),
		Category:         category,
		Supplier:         m.Supplier,
		SupplierURL:      normalizedURL,
		IsActive:         true,
	}}

	stock := 0
	if m.Available {
		stock = 100
	}
	for i, v := range m.Variants {
		vq := q
		vcur := currency
		if v.Price.Currency != "" {
			vcur = SourceCurrency(v.Price.Currency)
		}
		if v.Price.Amount.IsPositive() && (!v.Price.Amount.Equal(source) || vcur != currency) {
			if vq = s.Pricing.Quote(v.Price.Amount, vcur); vq.UnknownCurrency {
				vq = q
			}
		}
		attrs := v.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		cp.Variants = append(cp.Variants, domain.Variant{
			ID:             uuid.NewString(),
			ProductID:      cp.ID,
			Name:           v.Name,
			SKU:            VariantSKU(sku, i),
			Price:          vq.Selling,
			CompareAtPrice: vq.CompareAt,
			SupplierPrice:  vq.Base,
			Image:          v.Image,
			AttributesJSON: mustJSON(attrs),
			Stock:          stock,
			IsActive:       m.Available,
		})
	}
	return cp, warnings
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ ProductStore = (*repos.ProductRepo)(nil)
