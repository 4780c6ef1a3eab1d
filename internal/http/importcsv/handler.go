package importcsv

import (
	"encoding/csv"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/coinquest/internal/encoding"
	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/http/respond"
	txHandler "github.com/MrJamesThe3rd/coinquest/internal/http/transaction"
	"github.com/MrJamesThe3rd/coinquest/internal/importer"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
}

type importResponse struct {
	Imported         int              `json:"imported"`
	MerchantsCreated int              `json:"merchants_created"`
	Charset          encoding.Charset `json:"charset"`
	Transactions     any              `json:"transactions"`
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, errs.Invalid("body", "failed to parse form: "+err.Error()))
		return
	}

	format, err := importer.ParseFormat(r.FormValue("format"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, errs.Invalid("file", "is required"))
		return
	}
	defer file.Close()

	result, err := h.importSvc.Import(r.Context(), format, file, importer.Options{
		Category: r.FormValue("category"),
	})
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			err = errs.Invalid("file", perr.Error())
		}

		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{
		Imported:         len(result.Transactions),
		MerchantsCreated: result.MerchantsCreated,
		Charset:          result.Charset,
		Transactions:     txHandler.ToResponseList(result.Transactions),
	})
}
