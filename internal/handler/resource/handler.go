package resource

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/mindfulai/mindful-shell/internal/service/chat"
	"github.com/mindfulai/mindful-shell/pkg/utils"
)

// Handler 资源面板的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建资源处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册资源相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/resources", h.handleOpenResources)
}

// handleOpenResources 打开资源面板：刷新列表，空分类使用占位条目
func (h *Handler) handleOpenResources(w http.ResponseWriter, r *http.Request) {
	set, err := h.chatSvc.OpenResources(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, utils.StatusFor(err, chatService.ErrSessionNotFound), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, set)
}
