package routes

import (
	"model-pipeline/api/rest/handlers"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, stageHandler *handlers.StageHandler) {
	r.HandleFunc("/health", stageHandler.Health).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()

	// Processing stage
	api.HandleFunc("/stages/processing/launch", stageHandler.LaunchProcessing).Methods("POST")
	api.HandleFunc("/stages/processing/status", stageHandler.ProcessingStatus).Methods("POST")
	api.HandleFunc("/stages/processing/metadata", stageHandler.SaveProcessingMetadata).Methods("POST")

	// Hyperparameter search stage
	api.HandleFunc("/stages/hpo/launch", stageHandler.LaunchTuning).Methods("POST")
	api.HandleFunc("/stages/hpo/status", stageHandler.TuningStatus).Methods("POST")
	api.HandleFunc("/stages/hpo/metadata", stageHandler.SaveTuningMetadata).Methods("POST")

	// Training stage
	api.HandleFunc("/stages/training/launch", stageHandler.LaunchTraining).Methods("POST")
	api.HandleFunc("/stages/training/status", stageHandler.TrainingStatus).Methods("POST")
	api.HandleFunc("/stages/training/metadata", stageHandler.SaveTrainingMetadata).Methods("POST")

	// Promotion stage
	api.HandleFunc("/stages/promotion/run", stageHandler.PromoteModel).Methods("POST")

	// Batch transform stage
	api.HandleFunc("/stages/batch/launch", stageHandler.LaunchTransform).Methods("POST")
	api.HandleFunc("/stages/batch/status", stageHandler.TransformStatus).Methods("POST")
	api.HandleFunc("/stages/batch/metadata", stageHandler.SaveTransformMetadata).Methods("POST")

	// Dataset profiling
	api.HandleFunc("/datasets/profile", stageHandler.ProfileDataset).Methods("POST")
}
