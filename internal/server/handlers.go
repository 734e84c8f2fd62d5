package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"velo-registration/internal/mailer"
	"velo-registration/internal/models"
	"velo-registration/internal/registration"
)

type handlers struct {
	deps Deps
}

// fail logs err with the request id and answers with a generic message.
func (h *handlers) fail(c *gin.Context, status int, msg string, err error) {
	requestLog(c, h.deps.Log).WithError(err).Error(msg)
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Netinkama užklausa"})
}

// POST /api/register
func (h *handlers) register(c *gin.Context) {
	var sub models.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c)
		return
	}

	p, err := h.deps.Registration.Register(c.Request.Context(), sub)
	var verr *registration.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Užpildykite privalomus laukus", "fields": verr.Fields})
	case err != nil:
		h.fail(c, http.StatusInternalServerError, "Registracijos klaida", err)
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "Registracija sėkminga!", "id": p.ID})
	}
}

// GET /api/participants
func (h *handlers) listParticipants(c *gin.Context) {
	participants, err := h.deps.Roster.List(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Nepavyko gauti dalyvių sąrašo", err)
		return
	}
	c.JSON(http.StatusOK, participants)
}

// GET /api/participants/export.csv
func (h *handlers) exportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.deps.Roster.WriteCSV(c.Request.Context(), &buf); err != nil {
		h.fail(c, http.StatusInternalServerError, "Nepavyko eksportuoti dalyvių", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dalyviai.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// POST /api/participants/mark-seen
func (h *handlers) markSeen(c *gin.Context) {
	if err := h.deps.Roster.MarkSeen(c.Request.Context()); err != nil {
		h.fail(c, http.StatusInternalServerError, "Klaida atnaujinant būseną", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Visi dalyviai pažymėti kaip peržiūrėti"})
}

// DELETE /api/participants/:id
func (h *handlers) deleteParticipant(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Netinkamas dalyvio ID"})
		return
	}
	if err := h.deps.Roster.Remove(c.Request.Context(), id); err != nil {
		h.fail(c, http.StatusInternalServerError, "Klaida trinant dalyvį", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dalyvis ištrintas"})
}

// POST /api/participants/bulk-delete
func (h *handlers) bulkDelete(c *gin.Context) {
	var req models.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := h.deps.Roster.RemoveMany(c.Request.Context(), req.IDs); err != nil {
		h.fail(c, http.StatusInternalServerError, "Klaida trinant dalyvius", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dalyviai ištrinti"})
}

// POST /api/send-email
func (h *handlers) sendEmail(c *gin.Context) {
	var req models.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	res, err := h.deps.Mailer.Send(c.Request.Context(), mailer.Message{
		Recipients: req.Recipients,
		Subject:    req.Subject,
		Body:       req.Message,
	})
	if errors.Is(err, mailer.ErrNoRecipients) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nenurodyti gavėjai"})
		return
	}
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Klaida siunčiant laišką", err)
		return
	}
	h.deps.Metrics.Email(res.Provider)

	if res.ComposeURL != "" {
		c.JSON(http.StatusOK, gin.H{"message": "Laiškas paruoštas jūsų pašto programoje", "mailto": res.ComposeURL})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Laiškas sėkmingai išsiųstas (simuliacija)"})
}
