package admin

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/app/system/inputval"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/domain/models"
)

// configRich lists the site settings that keep safe formatting.
var configRich = []string{"aboutMe"}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, h.store.Snapshot().SiteConfig)
}

// handleUpdateConfig merges the given settings into the site configuration.
// Only the keys present in the body change.
func (h *Handler) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	raw, err := jsonutil.ReadBody(w, r, 0)
	if err != nil {
		bodyError(w, err)
		return
	}
	fields, err := content.Patch[models.SiteConfig](raw)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	current := h.store.Snapshot().SiteConfig
	if len(fields) == 0 {
		jsonutil.OK(w, current)
		return
	}
	htmlsanitize.Fields(fields, configRich...)

	merged, err := merge(current, fields)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if v := inputval.SiteConfig(merged); v.HasErrors() {
		jsonutil.ValidationError(w, v.Fields())
		return
	}
	if err := h.store.UpdateSiteConfig(r.Context(), fields); err != nil {
		jsonutil.InternalError(w, "could not save settings")
		return
	}
	jsonutil.OK(w, merged)
}
