package admin

import (
	"errors"
	"net/http"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/domain/models"
)

// ReorderRequest moves items in an ordered collection. Exactly one form is
// used:
//   - ID and Direction ("up" or "down") swap an item with its neighbour
//   - IDs lists items in their new order; positions become 1, 2, ...
//   - Entries assigns explicit orders
type ReorderRequest struct {
	ID        string               `json:"id,omitempty"`
	Direction string               `json:"direction,omitempty"`
	IDs       []string             `json:"ids,omitempty"`
	Entries   []content.OrderEntry `json:"entries,omitempty"`
}

type orderedItem struct {
	id    string
	order int
}

func orderedItems(st content.State, collection string) []orderedItem {
	var out []orderedItem
	switch collection {
	case models.CollectionProjects:
		for _, p := range models.SortProjects(st.Projects) {
			out = append(out, orderedItem{p.ID, p.Order})
		}
	case models.CollectionCertificates:
		for _, c := range models.SortCertificates(st.Certificates) {
			out = append(out, orderedItem{c.ID, c.Order})
		}
	}
	return out
}

func (h *Handler) handleReorder(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReorderRequest
		if err := jsonutil.Decode(w, r, &req); err != nil {
			bodyError(w, err)
			return
		}

		items := orderedItems(h.store.Snapshot(), collection)
		var entries []content.OrderEntry
		switch {
		case req.ID != "":
			var status int
			var msg string
			entries, status, msg = swapEntries(items, req.ID, req.Direction)
			if status != 0 {
				jsonutil.Error(w, status, msg)
				return
			}
		case len(req.IDs) > 0:
			var msg string
			if entries, msg = listEntries(items, req.IDs); msg != "" {
				jsonutil.BadRequest(w, msg)
				return
			}
		case len(req.Entries) > 0:
			entries = req.Entries
		default:
			jsonutil.BadRequest(w, "nothing to reorder")
			return
		}

		if len(entries) == 0 {
			jsonutil.NoContent(w)
			return
		}

		var err error
		if collection == models.CollectionProjects {
			err = h.store.ReorderProjects(r.Context(), entries)
		} else {
			err = h.store.ReorderCertificates(r.Context(), entries)
		}
		switch {
		case errors.Is(err, content.ErrMissingID), errors.Is(err, content.ErrInvalidOrder):
			jsonutil.BadRequest(w, err.Error())
		case err != nil:
			jsonutil.InternalError(w, "could not save order")
		default:
			jsonutil.NoContent(w)
		}
	}
}

// swapEntries exchanges the orders of id and its neighbour. When the two
// share an order, or either is unset, the whole list is renumbered with
// the pair swapped so the move is still visible. Moving past either end is
// a no-op.
func swapEntries(items []orderedItem, id, direction string) ([]content.OrderEntry, int, string) {
	var step int
	switch direction {
	case "up":
		step = -1
	case "down":
		step = 1
	default:
		return nil, http.StatusBadRequest, `direction must be "up" or "down"`
	}

	i := -1
	for k, it := range items {
		if it.id == id {
			i = k
			break
		}
	}
	if i < 0 {
		return nil, http.StatusNotFound, "item not found"
	}
	j := i + step
	if j < 0 || j >= len(items) {
		return nil, 0, ""
	}

	a, b := items[i], items[j]
	if a.order != b.order && a.order > 0 && b.order > 0 {
		return []content.OrderEntry{{ID: a.id, Order: b.order}, {ID: b.id, Order: a.order}}, 0, ""
	}

	moved := append([]orderedItem(nil), items...)
	moved[i], moved[j] = moved[j], moved[i]
	var out []content.OrderEntry
	for k, it := range moved {
		if it.order != k+1 {
			out = append(out, content.OrderEntry{ID: it.id, Order: k + 1})
		}
	}
	return out, 0, ""
}

// listEntries numbers ids 1..n. Every id must exist and appear once; items
// left out keep their order.
func listEntries(items []orderedItem, ids []string) ([]content.OrderEntry, string) {
	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.id] = true
	}
	seen := make(map[string]bool, len(ids))
	out := make([]content.OrderEntry, 0, len(ids))
	for k, id := range ids {
		if !known[id] {
			return nil, "unknown id " + id
		}
		if seen[id] {
			return nil, "duplicate id " + id
		}
		seen[id] = true
		out = append(out, content.OrderEntry{ID: id, Order: k + 1})
	}
	return out, ""
}
