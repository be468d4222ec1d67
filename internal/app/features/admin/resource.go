package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/app/system/inputval"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
)

// resource describes one editable collection.
type resource[T models.Entity] struct {
	name   string   // singular, for messages
	prefix string   // generated ids look like <prefix>-<unix-ms>
	rich   []string // BSON keys whose values keep safe formatting

	list   func(content.State) []T
	check  func(T) *inputval.Result
	add    func(context.Context, T) error
	update func(context.Context, string, docstore.Fields) error
	remove func(context.Context, string) error

	// defaultOrder, when set, supplies "order" for a create request that
	// leaves it out.
	defaultOrder func(content.State) int
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,99}$`)

func (h *Handler) projects() resource[models.Project] {
	return resource[models.Project]{
		name:   "project",
		prefix: "project",
		rich:   []string{"longDescription"},
		list:   func(st content.State) []models.Project { return models.SortProjects(st.Projects) },
		check:  inputval.Project,
		add:    h.store.AddProject,
		update: h.store.UpdateProject,
		remove: h.store.DeleteProject,
		defaultOrder: func(content.State) int {
			return models.DefaultProjectOrder
		},
	}
}

func (h *Handler) skills() resource[models.Skill] {
	return resource[models.Skill]{
		name:   "skill",
		prefix: "skill",
		list:   func(st content.State) []models.Skill { return st.Skills },
		check:  inputval.Skill,
		add:    h.store.AddSkill,
		update: h.store.UpdateSkill,
		remove: h.store.DeleteSkill,
	}
}

func (h *Handler) experiences() resource[models.Experience] {
	return resource[models.Experience]{
		name:   "experience",
		prefix: "exp",
		list:   func(st content.State) []models.Experience { return st.Experiences },
		check:  inputval.Experience,
		add:    h.store.AddExperience,
		update: h.store.UpdateExperience,
		remove: h.store.DeleteExperience,
	}
}

func (h *Handler) certificates() resource[models.Certificate] {
	return resource[models.Certificate]{
		name:   "certificate",
		prefix: "cert",
		list:   func(st content.State) []models.Certificate { return models.SortCertificates(st.Certificates) },
		check:  inputval.Certificate,
		add:    h.store.AddCertificate,
		update: h.store.UpdateCertificate,
		remove: h.store.DeleteCertificate,
		defaultOrder: func(st content.State) int {
			last := 0
			for _, c := range st.Certificates {
				last = max(last, c.Order)
			}
			return last + 1
		},
	}
}

func mountResource[T models.Entity](r chi.Router, h *Handler, path string, res resource[T]) {
	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		items := res.list(h.store.Snapshot())
		if items == nil {
			items = []T{}
		}
		jsonutil.OK(w, items)
	})
	r.Post(path, func(w http.ResponseWriter, r *http.Request) { createItem(w, r, h, res) })
	r.Get(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		item, ok := find(res.list(h.store.Snapshot()), chi.URLParam(r, "id"))
		if !ok {
			jsonutil.NotFound(w, res.name+" not found")
			return
		}
		jsonutil.OK(w, item)
	})
	r.Put(path+"/{id}", func(w http.ResponseWriter, r *http.Request) { updateItem(w, r, h, res) })
	r.Delete(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := find(res.list(h.store.Snapshot()), id); !ok {
			jsonutil.NotFound(w, res.name+" not found")
			return
		}
		if err := res.remove(r.Context(), id); err != nil {
			jsonutil.InternalError(w, "could not delete "+res.name)
			return
		}
		jsonutil.NoContent(w)
	})
}

// createItem adds a new entity. The body uses the entity's JSON field names;
// "id" is optional and generated when absent.
func createItem[T models.Entity](w http.ResponseWriter, r *http.Request, h *Handler, res resource[T]) {
	raw, err := jsonutil.ReadBody(w, r, 0)
	if err != nil {
		bodyError(w, err)
		return
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		jsonutil.BadRequest(w, "expected a JSON object")
		return
	}

	var id string
	if v, ok := obj["id"]; ok {
		if err := json.Unmarshal(v, &id); err != nil {
			jsonutil.BadRequest(w, "id must be a string")
			return
		}
		delete(obj, "id")
	}
	if id == "" {
		id = models.NewID(res.prefix, h.now())
	}
	if !idPattern.MatchString(id) {
		jsonutil.ValidationError(w, map[string]string{"id": "ID may contain only letters, digits, '-' and '_'."})
		return
	}

	st := h.store.Snapshot()
	if _, exists := find(res.list(st), id); exists {
		jsonutil.Error(w, http.StatusConflict, res.name+" "+id+" already exists")
		return
	}

	rest, _ := json.Marshal(obj)
	fields, err := content.Patch[T](rest)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	htmlsanitize.Fields(fields, res.rich...)
	if _, ok := fields["order"]; !ok && res.defaultOrder != nil {
		fields["order"] = res.defaultOrder(st)
	}
	fields["_id"] = id

	var zero T
	item, err := merge(zero, fields)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if v := res.check(item); v.HasErrors() {
		jsonutil.ValidationError(w, v.Fields())
		return
	}
	if err := res.add(r.Context(), item); err != nil {
		jsonutil.InternalError(w, "could not save "+res.name)
		return
	}
	jsonutil.Created(w, item)
}

// updateItem merges the changed fields into an existing entity.
func updateItem[T models.Entity](w http.ResponseWriter, r *http.Request, h *Handler, res resource[T]) {
	id := chi.URLParam(r, "id")
	current, ok := find(res.list(h.store.Snapshot()), id)
	if !ok {
		jsonutil.NotFound(w, res.name+" not found")
		return
	}

	raw, err := jsonutil.ReadBody(w, r, 0)
	if err != nil {
		bodyError(w, err)
		return
	}
	fields, err := content.Patch[T](raw)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if len(fields) == 0 {
		jsonutil.OK(w, current)
		return
	}
	htmlsanitize.Fields(fields, res.rich...)

	merged, err := merge(current, fields)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if v := res.check(merged); v.HasErrors() {
		jsonutil.ValidationError(w, v.Fields())
		return
	}
	if err := res.update(r.Context(), id, fields); err != nil {
		jsonutil.InternalError(w, "could not save "+res.name)
		return
	}
	jsonutil.OK(w, merged)
}

func find[T models.Entity](items []T, id string) (T, bool) {
	for _, it := range items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// merge applies fields, keyed by BSON name, on top of base.
func merge[T any](base T, fields docstore.Fields) (T, error) {
	var out T
	raw, err := bson.Marshal(base)
	if err != nil {
		return out, err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return out, err
	}
	for k, v := range fields {
		doc[k] = v
	}
	if raw, err = bson.Marshal(doc); err != nil {
		return out, err
	}
	err = bson.Unmarshal(raw, &out)
	return out, err
}

func bodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, jsonutil.ErrBodyTooLarge) {
		jsonutil.Error(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	jsonutil.BadRequest(w, err.Error())
}
