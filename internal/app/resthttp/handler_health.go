package resthttp

import (
	"net/http"

	"github.com/yourname/webp_lite/pkg/httperrors"
)

// healthStats: payload ответа /health.
type healthStats struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
}

// health сообщает, что процесс жив. Состояния у сервиса нет, поэтому проверять больше нечего.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	stats := healthStats{OK: true}
	if s.Cfg != nil {
		stats.Backend = s.Cfg.Encoder.Backend
	}
	httperrors.WriteJSON(w, http.StatusOK, stats)
}
