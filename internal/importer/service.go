package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/MrJamesThe3rd/coinquest/internal/category"
	"github.com/MrJamesThe3rd/coinquest/internal/encoding"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/matching"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type Options struct {
	// Category is used for rows that carry no category of their own.
	Category string
}

type Result struct {
	Charset          encoding.Charset
	Transactions     []*transaction.Transaction
	MerchantsCreated int
}

type Service struct {
	categories   *category.Service
	merchants    *merchant.Service
	matching     *matching.Service
	transactions *transaction.Service
	parsers      map[Format]Parser
}

func NewService(
	categories *category.Service,
	merchants *merchant.Service,
	matching *matching.Service,
	transactions *transaction.Service,
) *Service {
	return &Service{
		categories:   categories,
		merchants:    merchants,
		matching:     matching,
		transactions: transactions,
		parsers: map[Format]Parser{
			FormatCSV: CSVParser{},
			FormatCGD: CGDParser{},
		},
	}
}

// Import parses r and creates every transaction in it, or none.
// Categories must already exist. Merchants are looked up by name, then by
// learned alias, and created when neither matches.
func (s *Service) Import(ctx context.Context, format Format, r io.Reader, opts Options) (*Result, error) {
	parser, ok := s.parsers[format]
	if !ok {
		return nil, errs.Invalid("format", fmt.Sprintf("unknown import format %q", format))
	}

	utf8r, charset, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	rows, err := parser.Parse(utf8r)
	if err != nil {
		return nil, err
	}

	res := &Result{Charset: charset, Transactions: []*transaction.Transaction{}}
	if len(rows) == 0 {
		return res, nil
	}

	categoryIDs, err := s.resolveCategories(ctx, rows, opts.Category)
	if err != nil {
		return nil, err
	}

	merchantIDs, created, err := s.resolveMerchants(ctx, rows)
	if err != nil {
		return nil, err
	}

	res.MerchantsCreated = created

	params := make([]transaction.CreateParams, len(rows))
	for i, row := range rows {
		params[i] = transaction.CreateParams{
			Date:       row.Date,
			Type:       row.Type,
			Amount:     row.Amount,
			CategoryID: categoryIDs[i],
			MerchantID: merchantIDs[i],
			Note:       row.Note,
		}
	}

	txs, err := s.transactions.CreateBatch(ctx, params)
	if err != nil {
		return nil, err
	}

	res.Transactions = txs

	slog.Info("import finished",
		"format", format,
		"charset", charset,
		"transactions", len(txs),
		"merchants_created", created,
	)

	return res, nil
}

func (s *Service) resolveCategories(ctx context.Context, rows []Row, fallback string) ([]uuid.UUID, error) {
	all, err := s.categories.List(ctx, category.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	fold := cases.Fold()

	byName := make(map[string]uuid.UUID, len(all))
	for _, c := range all {
		byName[fold.String(c.Name)] = c.ID
	}

	ids := make([]uuid.UUID, len(rows))

	for i, row := range rows {
		name := row.Category
		if name == "" {
			name = fallback
		}

		if name == "" {
			return nil, rowErr(row.Line, errs.Invalid("category", "is required"))
		}

		id, ok := byName[fold.String(name)]
		if !ok {
			return nil, rowErr(row.Line, fmt.Errorf("unknown category %q: %w", name, errs.ErrInvalidReference))
		}

		ids[i] = id
	}

	return ids, nil
}

func (s *Service) resolveMerchants(ctx context.Context, rows []Row) ([]uuid.UUID, int, error) {
	fold := cases.Fold()
	cache := make(map[string]uuid.UUID)
	ids := make([]uuid.UUID, len(rows))
	created := 0

	for i, row := range rows {
		if row.Merchant == "" {
			return nil, 0, rowErr(row.Line, errs.Invalid("merchant", "is required"))
		}

		key := fold.String(merchantName(row.Merchant))
		if id, ok := cache[key]; ok {
			ids[i] = id
			continue
		}

		id, isNew, err := s.ResolveMerchant(ctx, row.Merchant)
		if err != nil {
			return nil, 0, rowErr(row.Line, err)
		}

		if isNew {
			created++
		}

		cache[key] = id
		ids[i] = id
	}

	return ids, created, nil
}

// ResolveMerchant finds the merchant for a free-text name: exact name first,
// then a learned alias, else a new merchant. Names longer than a merchant name
// allows are cut, and looked up cut. It reports whether one was created.
func (s *Service) ResolveMerchant(ctx context.Context, name string) (uuid.UUID, bool, error) {
	stored := merchantName(name)

	m, err := s.merchants.FindByName(ctx, stored)
	if err == nil {
		return m.ID, false, nil
	}

	if !errors.Is(err, errs.ErrNotFound) {
		return uuid.Nil, false, fmt.Errorf("finding merchant: %w", err)
	}

	id, err := s.matching.Suggest(ctx, name)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("matching merchant: %w", err)
	}

	if id != uuid.Nil {
		return id, false, nil
	}

	m, err = s.merchants.Create(ctx, merchant.CreateParams{Name: stored})
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("creating merchant: %w", err)
	}

	return m.ID, true, nil
}

const maxMerchantName = 100

// merchantName is name as it is stored: trimmed and at most maxMerchantName runes.
func merchantName(name string) string {
	return strings.TrimSpace(truncate(strings.TrimSpace(name), maxMerchantName))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
