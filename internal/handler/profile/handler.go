package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/mindfulai/mindful-shell/internal/service/chat"
	"github.com/mindfulai/mindful-shell/pkg/utils"
)

// Handler 用户档案的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建档案处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册档案相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/profile", h.handleGetProfile)
	r.Post("/sessions/{sessionID}/profile/follow-up", h.handleScheduleFollowUp)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.chatSvc.Profile(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, utils.StatusFor(err, chatService.ErrSessionNotFound), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

// handleScheduleFollowUp 预约回访；后端同步在后台进行，不影响响应
func (h *Handler) handleScheduleFollowUp(w http.ResponseWriter, r *http.Request) {
	p, err := h.chatSvc.ScheduleFollowUp(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, utils.StatusFor(err, chatService.ErrSessionNotFound), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
