package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"model-pipeline/config"
	"model-pipeline/core/dataset"
	"model-pipeline/core/stages"
	"model-pipeline/providers/aws"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var eventFile string

var runCmd = &cobra.Command{
	Use:   "run <stage>/<operation>",
	Short: "Run one pipeline stage operation",
	Long: `Run one pipeline stage operation with the event payload from --file.

Operations:
  processing/launch    processing/status    processing/metadata
  hpo/launch           hpo/status           hpo/metadata
  training/launch      training/status      training/metadata
  promotion/run
  batch/launch         batch/status         batch/metadata
  dataset/profile`,
	Args: cobra.ExactArgs(1),
	RunE: runStage,
}

func init() {
	runCmd.Flags().StringVarP(&eventFile, "file", "f", "", "event payload file (YAML or JSON)")
	runCmd.MarkFlagRequired("file")
}

func runStage(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	clients, err := aws.NewClients(ctx, cfg.Region)
	if err != nil {
		return err
	}

	objects := aws.NewObjectStore(clients.S3)
	launcher := aws.NewLauncher(clients.SageMaker)
	registry := aws.NewRegistry(clients.SageMaker)

	offset := time.Duration(cfg.ClockOffsetHours) * time.Hour
	opts := stages.Options{
		Project:   cfg.Project,
		JobPrefix: cfg.JobPrefix,
		Clock: func() time.Time {
			return time.Now().UTC().Add(offset)
		},
		Log: logger,
	}

	event, err := loadEvent(eventFile)
	if err != nil {
		return err
	}

	var result any
	switch op := args[0]; op {
	case "processing/launch":
		result, err = invoke(ctx, event, stages.NewProcessingStage(objects, launcher, opts).Launch)
	case "processing/status":
		result, err = invoke(ctx, event, stages.NewProcessingStage(objects, launcher, opts).Status)
	case "processing/metadata":
		result, err = invoke(ctx, event, stages.NewProcessingStage(objects, launcher, opts).SaveMetadata)
	case "hpo/launch":
		result, err = invoke(ctx, event, stages.NewTuningStage(objects, launcher, opts).Launch)
	case "hpo/status":
		result, err = invoke(ctx, event, stages.NewTuningStage(objects, launcher, opts).Status)
	case "hpo/metadata":
		result, err = invoke(ctx, event, stages.NewTuningStage(objects, launcher, opts).SaveMetadata)
	case "training/launch":
		result, err = invoke(ctx, event, stages.NewTrainingStage(objects, launcher, opts).Launch)
	case "training/status":
		result, err = invoke(ctx, event, stages.NewTrainingStage(objects, launcher, opts).Status)
	case "training/metadata":
		result, err = invoke(ctx, event, stages.NewTrainingStage(objects, launcher, opts).SaveMetadata)
	case "promotion/run":
		result, err = invoke(ctx, event, stages.NewPromotionStage(objects, registry, opts).Run)
	case "batch/launch":
		result, err = invoke(ctx, event, stages.NewTransformStage(objects, launcher, registry, opts).Launch)
	case "batch/status":
		result, err = invoke(ctx, event, stages.NewTransformStage(objects, launcher, registry, opts).Status)
	case "batch/metadata":
		result, err = invoke(ctx, event, stages.NewTransformStage(objects, launcher, registry, opts).SaveMetadata)
	case "dataset/profile":
		result, err = invoke(ctx, event, func(ctx context.Context, req struct {
			FilePath string `json:"file_path"`
		}) (dataset.Profile, error) {
			return dataset.NewProfiler(objects).Profile(ctx, req.FilePath)
		})
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// loadEvent reads the event file and normalizes it to JSON. YAML parses
// JSON input too, so either form works.
func loadEvent(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse event file: %w", err)
	}

	return json.Marshal(doc)
}

func invoke[Req, Res any](ctx context.Context, event []byte, fn func(context.Context, Req) (Res, error)) (Res, error) {
	var req Req
	if err := json.Unmarshal(event, &req); err != nil {
		var zero Res
		return zero, fmt.Errorf("decode event: %w", err)
	}
	return fn(ctx, req)
}
