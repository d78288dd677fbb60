package worker

import (
	"github.com/spec-kit/callcenter-service/internal/service"
)

// StartActivityWorker registers the activity recorder on the dispatcher.
func StartActivityWorker(activity *service.ActivityService) {
	if activity == nil {
		return
	}
	activity.RegisterHandlers()
}
