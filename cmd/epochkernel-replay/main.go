// Command epochkernel-replay is the kernel's conformance harness: it
// drives ApplyEpoch across a synthetic chain of empty epochs, reporting
// progress the way the teacher's beacon-chain binary reports node
// status — structured logging via logrus, a Prometheus metrics
// endpoint, and OpenCensus spans exported to Jaeger when tracing is
// enabled. With --live, epochs are paced against the wall clock
// (--epoch-seconds apart) instead of applied back to back, which is
// useful for watching the metrics endpoint evolve the way an operator
// would against a real chain.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/epochkernel/epochkernel/core/transition"
	"github.com/epochkernel/epochkernel/internal/metrics"
	"github.com/epochkernel/epochkernel/internal/statecache"
	"github.com/epochkernel/epochkernel/internal/tracing"
	"github.com/epochkernel/epochkernel/shared/logutil"
	"github.com/epochkernel/epochkernel/shared/params"
)

var (
	epochsFlag = &cli.IntFlag{
		Name:  "epochs",
		Usage: "Number of empty epochs to replay after genesis.",
		Value: 100,
	}
	monitoringPortFlag = &cli.IntFlag{
		Name:  "monitoring-port",
		Usage: "Port the Prometheus /metrics endpoint is served on. 0 disables it.",
		Value: 8989,
	}
	enableTracingFlag = &cli.BoolFlag{
		Name:  "enable-tracing",
		Usage: "Enable span export to a Jaeger collector.",
	}
	tracingEndpointFlag = &cli.StringFlag{
		Name:  "tracing-endpoint",
		Usage: "Jaeger collector endpoint traces are exported to.",
		Value: "http://127.0.0.1:14268/api/traces",
	}
	traceSampleFractionFlag = &cli.Float64Flag{
		Name:  "trace-sample-fraction",
		Usage: "Fraction of ApplyEpoch calls sampled for tracing.",
		Value: 1.0,
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "If set, persist logs to this file in addition to stdout.",
	}
	cacheSizeFlag = &cli.IntFlag{
		Name:  "state-cache-size",
		Usage: "Number of recently committed states kept in the in-memory LRU cache.",
		Value: 256,
	}
	liveFlag = &cli.BoolFlag{
		Name:  "live",
		Usage: "Pace epoch application against the wall clock instead of applying every epoch back to back.",
	}
	epochSecondsFlag = &cli.IntFlag{
		Name:  "epoch-seconds",
		Usage: "Wall-clock duration of one epoch in live mode.",
		Value: 384,
	}
)

var log = logrus.WithField("prefix", "replay")

func main() {
	app := &cli.App{
		Name:  "epochkernel-replay",
		Usage: "replay a synthetic chain of epochs against the kernel and report conformance",
		Flags: []cli.Flag{
			epochsFlag,
			monitoringPortFlag,
			enableTracingFlag,
			tracingEndpointFlag,
			traceSampleFractionFlag,
			logFileFlag,
			cacheSizeFlag,
			liveFlag,
			epochSecondsFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Error("replay failed")
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	runID := uuid.New()
	log = log.WithField("run_id", runID.String())

	if logFile := ctx.String(logFileFlag.Name); logFile != "" {
		if err := logutil.ConfigurePersistentLogging(logFile); err != nil {
			log.WithError(err).Error("failed to configure persistent logging")
		}
	}

	flush, err := tracing.Setup(tracing.Options{
		Enabled:           ctx.Bool(enableTracingFlag.Name),
		ProcessName:       "epochkernel-replay",
		CollectorEndpoint: ctx.String(tracingEndpointFlag.Name),
		SampleFraction:    ctx.Float64(traceSampleFractionFlag.Name),
	})
	if err != nil {
		return err
	}
	defer flush()

	if port := ctx.Int(monitoringPortFlag.Name); port != 0 {
		go serveMetrics(port)
	}

	cache, err := statecache.New(ctx.Int(cacheSizeFlag.Name))
	if err != nil {
		return err
	}

	genesis, err := transition.Genesis()
	if err != nil {
		return err
	}
	cache.Put(genesis)
	log.WithField("state_root", fmt.Sprintf("%x", genesis.StateRoot)).Info("genesis committed")

	live := ctx.Bool(liveFlag.Name)
	epochDuration := time.Duration(ctx.Int(epochSecondsFlag.Name)) * time.Second

	// Every replayed epoch is empty: no witness mutations, and entropy
	// stats of zero supply carrying the pinned optimal validator count.
	emptyBundle := transition.WitnessBundle{
		EntropyStats: transition.EntropyStats{
			ActiveBondedMagnitudeRaw: "0",
			TotalSupplyRaw:           "0",
			OptimalValidatorCount:    params.Config().OptimalValidatorCount,
		},
	}

	prev := genesis
	n := ctx.Int(epochsFlag.Name)
	for i := 0; i < n; i++ {
		if cached, ok := cache.Get(prev.StateRoot); ok {
			prev = cached
		}

		if live {
			log.WithField("epoch", prev.EpochNumber+1).Info("pacing to next epoch")
			logutil.CountdownToNextEpoch(time.Now().Add(epochDuration), 60)
		}

		spanCtx, span := tracing.StartEpochSpan(context.Background(), prev.EpochNumber+1)

		start := time.Now()
		next, err := transition.ApplyEpoch(prev, nil, nil, emptyBundle, nil, transition.StubVDFVerifier{})
		metrics.EpochApplyDurationSeconds.Observe(time.Since(start).Seconds())
		span.End()
		_ = spanCtx

		if err != nil {
			metrics.EpochApplyFailuresTotal.WithLabelValues(errorKind(err)).Inc()
			return err
		}
		if err := transition.VerifyChainContinuity(prev, next); err != nil {
			metrics.EpochApplyFailuresTotal.WithLabelValues(errorKind(err)).Inc()
			return err
		}

		cache.Put(next)
		metrics.EpochNumberGauge.Set(float64(next.EpochNumber))
		if entropy, convErr := strconv.ParseFloat(next.EntropyMetricScaled.Raw(), 64); convErr == nil {
			metrics.EntropyMetricGauge.Set(entropy)
		}

		wire, encodeErr := next.CanonicalBytes()
		if encodeErr == nil {
			logutil.ReportPersistedStateSize(fmt.Sprintf("epoch-%d.json", next.EpochNumber), len(wire))
		}

		prev = next
	}

	log.WithField("final_state_root", fmt.Sprintf("%x", prev.StateRoot)).Info("replay complete")
	return nil
}

func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	log.WithField("addr", addr).Info("serving Prometheus metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("metrics server stopped")
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, transition.ErrMathOverflow):
		return "math_overflow"
	case errors.Is(err, transition.ErrInvalidSerialization):
		return "invalid_serialization"
	case errors.Is(err, transition.ErrInvalidMerkleWitness):
		return "invalid_merkle_witness"
	case errors.Is(err, transition.ErrInvalidVdfProof):
		return "invalid_vdf_proof"
	case errors.Is(err, transition.ErrPayloadLimitExceeded):
		return "payload_limit_exceeded"
	case errors.Is(err, transition.ErrChainMismatch):
		return "chain_mismatch"
	default:
		return "unknown"
	}
}
