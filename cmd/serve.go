/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mpromonet/gin-postproc/internal/config"
	"github.com/mpromonet/gin-postproc/internal/edgeapp"
	"github.com/mpromonet/gin-postproc/internal/export"
	"github.com/mpromonet/gin-postproc/internal/inference"
	"github.com/mpromonet/gin-postproc/internal/processor"
	"github.com/mpromonet/gin-postproc/internal/sensor"
	"github.com/mpromonet/gin-postproc/internal/server"
)

var serveOpts config.Options

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a processor over HTTP and run the edge loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		serveOpts.LogLevel = logLevel
		cfg, err := config.Load(configPath, serveOpts)
		if err != nil {
			return err
		}
		setupLogging(cfg.LogLevel)
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.Processor, "processor", "", "processor to run (detection, posenet)")
	serveCmd.Flags().StringVar(&serveOpts.Addr, "addr", "", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveOpts.ModelPath, "model", "", "path to the TensorFlow Lite model")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	stream := sensor.NewMemoryStream(cfg.Export.Queue)
	proc, err := processor.New(cfg.Processor, processor.WithStream(stream))
	if err != nil {
		return err
	}

	sink, err := newSink(ctx, cfg)
	if err != nil {
		return err
	}
	exporter := export.NewExporter(sink, cfg.Export.Queue, cfg.Export.Timeout)
	app := edgeapp.New(proc, stream, exporter, cfg.Export.MQTT.StateTopic)

	if cfg.Engine.ConfigFile != "" {
		doc, err := os.ReadFile(cfg.Engine.ConfigFile)
		if err != nil {
			return fmt.Errorf("read engine configuration: %w", err)
		}
		if _, err := app.OnConfigure(doc); err != nil {
			log.Warn().Err(err).Str("file", cfg.Engine.ConfigFile).Msg("Engine configuration corrected")
		}
	}

	model, closeModel := loadModel(cfg, proc)
	defer closeModel()

	srv := server.New(proc, server.Options{
		StaticDir: cfg.HTTP.StaticDir,
		Model:     model,
		Configure: app.OnConfigure,
		Frames:    stream,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return exporter.Run(ctx) })
	g.Go(func() error {
		defer stream.Close()
		return srv.Run(ctx, cfg.HTTP.Addr)
	})
	g.Go(func() error { return app.Run(ctx) })

	err = g.Wait()
	log.Info().Msg("postproc shutdown complete")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newSink(ctx context.Context, cfg *config.Config) (export.Sink, error) {
	mqttCfg := cfg.Export.MQTT
	if mqttCfg.Broker == "" {
		log.Info().Msg("No MQTT broker configured, exporting to the log")
		return export.LogSink{}, nil
	}
	client, err := export.Dial(ctx, mqttCfg.Broker, mqttCfg.ClientID)
	if err != nil {
		return nil, err
	}
	return export.NewMQTTSink(client, export.Topics{
		export.PortMetadata: mqttCfg.MetadataTopic,
		export.PortState:    mqttCfg.StateTopic,
	}), nil
}

// loadModel prepares the optional inference stage. A missing model only
// disables /runmodel and /annotate.
func loadModel(cfg *config.Config, proc processor.Processor) (*server.Model, func()) {
	noop := func() {}
	if _, err := os.Stat(cfg.Model.Path); err != nil {
		log.Warn().Err(err).Str("model", cfg.Model.Path).Msg("Model not available, inference disabled")
		return nil, noop
	}
	runner, err := inference.NewRunner(cfg.Model.Path, inference.Options{Threads: cfg.Model.Threads, EdgeTPU: cfg.Model.EdgeTPU})
	if err != nil {
		log.Error().Err(err).Msg("Cannot load model, inference disabled")
		return nil, noop
	}

	var order func() [4]int
	if p, ok := proc.(*processor.PoseNet); ok {
		order = func() [4]int { return p.Params().TensorOrder() }
	}
	w, h := runner.InputSize()
	packer, err := inference.NewPacker(cfg.Model.Family, w, h, order)
	if err != nil {
		runner.Close()
		log.Error().Err(err).Msg("Cannot pack model outputs, inference disabled")
		return nil, noop
	}

	labels, err := inference.LoadLabels(cfg.Model.Labels)
	if err != nil {
		log.Warn().Err(err).Str("labels", cfg.Model.Labels).Msg("Labels not available")
	}
	return &server.Model{Runner: runner, Packer: packer, Labels: labels}, runner.Close
}
