package handlers

import (
	"net/http"

	"studyhub/internal/utils"
)

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
