package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/ops"
	"github.com/tradehand/tradehand/internal/task"
)

// maxTranscriptionChars guards against runaway request bodies; a dictated
// voice note is short.
const maxTranscriptionChars = 10000

type submitCaptureRequest struct {
	Transcription   string  `json:"transcription"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// handleSubmitCapture handles POST /api/v1/captures.
func (s *Server) handleSubmitCapture(c *gin.Context) {
	var req submitCaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidation("invalid request body"))
		return
	}
	if len(req.Transcription) > maxTranscriptionChars {
		abortWithError(c, errors.NewValidation("transcription too long"))
		return
	}

	out, err := ops.Submit(c.Request.Context(), s.db, s.cfg, s.client, s.logger, ops.SubmitInput{
		UserID:          currentUser(c),
		Transcription:   req.Transcription,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// handleListTasks handles GET /api/v1/tasks.
func (s *Server) handleListTasks(c *gin.Context) {
	out, err := ops.List(c.Request.Context(), s.db, ops.ListInput{
		UserID: currentUser(c),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type updateTaskRequest struct {
	Status       string  `json:"status"`
	ContactID    *string `json:"contactId,omitempty"`
	ContactPhone *string `json:"contactPhone,omitempty"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	Message      *string `json:"message,omitempty"`
	Timing       *string `json:"timing,omitempty"`
}

// handleUpdateTask handles PATCH /api/v1/tasks/:id.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidation("invalid request body"))
		return
	}

	updated, err := ops.Transition(c.Request.Context(), s.db, s.logger, ops.TransitionInput{
		TaskID:       c.Param("id"),
		UserID:       currentUser(c),
		Status:       task.Status(req.Status),
		ContactID:    req.ContactID,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Message:      req.Message,
		Timing:       req.Timing,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type bulkApproveRequest struct {
	TaskIDs []string `json:"taskIds"`
}

// handleBulkApprove handles POST /api/v1/tasks/bulk-approve.
func (s *Server) handleBulkApprove(c *gin.Context) {
	var req bulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidation("invalid request body"))
		return
	}

	out, err := ops.BulkApprove(c.Request.Context(), s.db, s.logger, ops.BulkApproveInput{
		UserID:  currentUser(c),
		TaskIDs: req.TaskIDs,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// handleSearchContacts handles GET /api/v1/contacts?q=.
func (s *Server) handleSearchContacts(c *gin.Context) {
	out, err := ops.SearchContacts(c.Request.Context(), s.db, ops.SearchContactsInput{
		UserID: currentUser(c),
		Query:  c.Query("q"),
		Limit:  s.cfg.CandidateLimit,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type createContactRequest struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
	Kind  string  `json:"kind,omitempty"`
	Notes string  `json:"notes,omitempty"`
}

// handleCreateContact handles POST /api/v1/contacts.
func (s *Server) handleCreateContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidation("invalid request body"))
		return
	}

	contact, err := ops.CreateContact(c.Request.Context(), s.db, ops.CreateContactInput{
		UserID: currentUser(c),
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Kind:   req.Kind,
		Notes:  req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// abortWithError renders a structured error and stops the handler chain.
// Internal error details never reach the client.
func abortWithError(c *gin.Context, err error) {
	if tErr, ok := err.(*errors.Error); ok {
		body := gin.H{"code": tErr.Code, "message": tErr.Message}
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			body["details"] = tErr.Details
		}
		c.AbortWithStatusJSON(tErr.Status, gin.H{"error": body})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": errors.ErrInternal, "message": "an internal error occurred"},
	})
}
