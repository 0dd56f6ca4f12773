// Package logutil creates a Multi writer instance that writes all logs
// that are written to stdout, and reports the replay harness's progress
// toward its next scheduled epoch application while it runs in live
// (wall-clock-paced) mode.
package logutil

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/epochkernel/epochkernel/shared/roughtime"
)

// ConfigurePersistentLogging adds a log-to-file writer. File content is identical to stdout.
func ConfigurePersistentLogging(logFileName string) error {
	logrus.WithField("logFileName", logFileName).Info("Logs will be made persistent")
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	mw := io.MultiWriter(os.Stdout, f)
	logrus.SetOutput(mw)

	logrus.Info("File logging initialized")
	return nil
}

// CountdownToNextEpoch blocks until nextEpochTime, printing a progress
// line once per secondsCount interval. The replay harness's live mode
// uses this to pace synthetic epoch application against the wall clock
// instead of applying every epoch back to back.
func CountdownToNextEpoch(nextEpochTime time.Time, secondsCount int) {
	ticker := time.NewTicker(time.Duration(secondsCount) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-time.NewTimer(roughtime.Until(nextEpochTime) + 1).C:
			fmt.Println("next epoch time reached")
			return

		case <-ticker.C:
			fmt.Printf("%02d minutes to next epoch!\n", roughtime.Until(nextEpochTime).Round(time.Minute)/time.Minute+1)
		}
	}
}

// ReportPersistedStateSize logs the human-readable size of a
// canonical-JSON encoded EpochState written to disk, following the
// teacher's use of go-humanize.Bytes for state-size reporting.
func ReportPersistedStateSize(path string, byteCount int) {
	logrus.WithFields(logrus.Fields{
		"path": path,
		"size": humanize.Bytes(uint64(byteCount)),
	}).Info("Persisted epoch state")
}
