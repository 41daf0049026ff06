package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/staffman/internal/model"
)

// dateLayout は入社日のリクエスト/レスポンス形式。
const dateLayout = "2006-01-02"

// EmployeeServiceInterface は従業員ハンドラーが必要とするサービスインターフェース。
type EmployeeServiceInterface interface {
	List(ctx context.Context) ([]*model.Employee, error)
	Create(ctx context.Context, input *model.EmployeeInput) (*model.Employee, error)
	Update(ctx context.Context, id string, patch *model.EmployeePatch) (*model.Employee, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AuthorizationGate は操作に必要な権限の判定インターフェース。
// auth.Gateの部分集合として定義する。
type AuthorizationGate interface {
	RequireSession(ctx context.Context) (*model.SessionPayload, error)
	RequireAdmin(ctx context.Context) (*model.SessionPayload, error)
}

// MutationRecorder は従業員変更操作のメトリクス記録インターフェース。
type MutationRecorder interface {
	RecordMutation(operation, result string)
	RecordAuthzDenied()
}

// EmployeeHandler は従業員レコード管理のHTTPハンドラー。
// すべての変更操作は最初にRequireAdminを通す。
type EmployeeHandler struct {
	service EmployeeServiceInterface
	gate    AuthorizationGate
	metrics MutationRecorder
}

// NewEmployeeHandler はEmployeeHandlerを生成する。metricsはnilでもよい。
func NewEmployeeHandler(service EmployeeServiceInterface, gate AuthorizationGate, metrics MutationRecorder) *EmployeeHandler {
	return &EmployeeHandler{
		service: service,
		gate:    gate,
		metrics: metrics,
	}
}

// createEmployeeRequest は従業員作成リクエストのボディ。
type createEmployeeRequest struct {
	Name          string `json:"name" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	Position      string `json:"position" validate:"required,min=2"`
	Department    string `json:"department" validate:"required,min=2"`
	DateOfJoining string `json:"date_of_joining" validate:"required"`
}

// updateEmployeeRequest は従業員更新リクエストのボディ。
// 指定されたフィールドのみを既存レコードにマージする。
type updateEmployeeRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=2"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Position      *string `json:"position" validate:"omitempty,min=2"`
	Department    *string `json:"department" validate:"omitempty,min=2"`
	DateOfJoining *string `json:"date_of_joining" validate:"omitempty"`
}

// employeeResponse は従業員レコードのAPIレスポンス。
type employeeResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Position      string `json:"position"`
	Department    string `json:"department"`
	DateOfJoining string `json:"date_of_joining"`
}

// List は従業員一覧を名前の昇順で返す。
// GET /api/employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireSession(r.Context()); err != nil {
		writeActionError(w, model.NewUnauthorizedError())
		return
	}

	employees, err := h.service.List(r.Context())
	if err != nil {
		writeActionError(w, err)
		return
	}

	responses := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, toEmployeeResponse(e))
	}

	writeSuccess(w, http.StatusOK, responses)
}

// Create は従業員の新規作成を処理する。
// POST /api/employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireAdmin(r.Context()); err != nil {
		h.recordDenied()
		h.recordMutation("create", "failure")
		writeActionError(w, model.NewUnauthorizedError())
		return
	}

	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recordMutation("create", "failure")
		writeActionError(w, model.NewValidationError("リクエストボディを解釈できません"))
		return
	}
	if err := validate.Struct(&req); err != nil {
		h.recordMutation("create", "failure")
		writeActionError(w, model.NewValidationError(err.Error()))
		return
	}

	dateOfJoining, err := time.Parse(dateLayout, req.DateOfJoining)
	if err != nil {
		h.recordMutation("create", "failure")
		writeActionError(w, model.NewValidationError("入社日はYYYY-MM-DD形式で指定してください"))
		return
	}

	created, err := h.service.Create(r.Context(), &model.EmployeeInput{
		Name:          req.Name,
		Email:         req.Email,
		Position:      req.Position,
		Department:    req.Department,
		DateOfJoining: dateOfJoining,
	})
	if err != nil {
		h.recordMutation("create", "failure")
		writeActionError(w, err)
		return
	}

	h.recordMutation("create", "success")
	writeSuccess(w, http.StatusCreated, toEmployeeResponse(created))
}

// Update は従業員の部分更新を処理する。
// PUT /api/employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireAdmin(r.Context()); err != nil {
		h.recordDenied()
		h.recordMutation("update", "failure")
		writeActionError(w, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.recordMutation("update", "failure")
		writeActionError(w, model.NewValidationError("従業員IDが指定されていません"))
		return
	}

	var req updateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recordMutation("update", "failure")
		writeActionError(w, model.NewValidationError("リクエストボディを解釈できません"))
		return
	}
	if err := validate.Struct(&req); err != nil {
		h.recordMutation("update", "failure")
		writeActionError(w, model.NewValidationError(err.Error()))
		return
	}

	patch := &model.EmployeePatch{
		Name:       req.Name,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
	}
	if req.DateOfJoining != nil {
		dateOfJoining, err := time.Parse(dateLayout, *req.DateOfJoining)
		if err != nil {
			h.recordMutation("update", "failure")
			writeActionError(w, model.NewValidationError("入社日はYYYY-MM-DD形式で指定してください"))
			return
		}
		patch.DateOfJoining = &dateOfJoining
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.recordMutation("update", "failure")
		writeActionError(w, err)
		return
	}

	h.recordMutation("update", "success")
	writeSuccess(w, http.StatusOK, toEmployeeResponse(updated))
}

// Delete は従業員の削除を処理する。
// DELETE /api/employees/{id}
// ストアはdeleted=falseをエラーなしで返すが、アクション境界では
// 未検出のoutcomeとして報告する。
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireAdmin(r.Context()); err != nil {
		h.recordDenied()
		h.recordMutation("delete", "failure")
		writeActionError(w, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.recordMutation("delete", "failure")
		writeActionError(w, model.NewValidationError("従業員IDが指定されていません"))
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.recordMutation("delete", "failure")
		writeActionError(w, err)
		return
	}
	if !deleted {
		h.recordMutation("delete", "failure")
		writeActionError(w, model.NewEmployeeNotFoundError(id))
		return
	}

	h.recordMutation("delete", "success")
	writeSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// recordMutation はmetricsが設定されている場合のみ変更操作を記録する。
func (h *EmployeeHandler) recordMutation(operation, result string) {
	if h.metrics != nil {
		h.metrics.RecordMutation(operation, result)
	}
}

// recordDenied はmetricsが設定されている場合のみ認可拒否を記録する。
func (h *EmployeeHandler) recordDenied() {
	if h.metrics != nil {
		h.metrics.RecordAuthzDenied()
	}
}

// toEmployeeResponse は従業員レコードをAPIレスポンス形式に変換する。
func toEmployeeResponse(e *model.Employee) employeeResponse {
	return employeeResponse{
		ID:            e.ID,
		Name:          e.Name,
		Email:         e.Email,
		Position:      e.Position,
		Department:    e.Department,
		DateOfJoining: e.DateOfJoining.Format(dateLayout),
	}
}
