package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given the Logger package", t, func() {
		Convey("New function", func() {
			Convey("When creating a logger with console output only", func() {
				logger, err := New(Options{App: "siteshot-storage", Level: "info"})

				Convey("It should create a logger successfully", func() {
					So(err, ShouldBeNil)
					So(logger, ShouldNotBeNil)
					So(func() { logger.Info("Test log") }, ShouldNotPanic)
				})
			})

			Convey("When creating a logger with a log file", func() {
				tempDir, err := os.MkdirTemp("", "logger_test")
				So(err, ShouldBeNil)
				defer os.RemoveAll(tempDir)

				logFile := filepath.Join(tempDir, "logs", "siteshot.log")
				logger, err := New(Options{App: "siteshot-storage", Level: "debug", File: logFile})

				Convey("It should write JSON lines tagged with the app name", func() {
					So(err, ShouldBeNil)

					logger.Debugf("[%s] Uploading %s", "job-1", "a.png")
					logger.Close()

					content, err := os.ReadFile(logFile)
					So(err, ShouldBeNil)
					So(string(content), ShouldContainSubstring, `[job-1] Uploading a.png`)
					So(string(content), ShouldContainSubstring, `"app":"siteshot-storage"`)
					So(strings.Count(string(content), "\n"), ShouldEqual, 1)
				})
			})

			Convey("When creating a logger with an invalid log level", func() {
				logger, err := New(Options{Level: "invalid"})

				Convey("It should default to Info level and create a logger", func() {
					So(err, ShouldBeNil)
					So(logger, ShouldNotBeNil)
					So(logger.Desugar().Core().Enabled(-1), ShouldBeFalse)
				})
			})

			Convey("When creating a logger with an invalid log file path", func() {
				logger, err := New(Options{Level: "info", File: "/dev/null/siteshot/test.log"})

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to create log directory")
					So(logger, ShouldBeNil)
				})
			})
		})

		Convey("Nop function", func() {
			Convey("It should swallow log lines", func() {
				So(func() { Nop().Errorf("boom") }, ShouldNotPanic)
			})
		})
	})
}
