package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nvasani/holonsim/internal/logging"
)

var _ = Describe("Logging", func() {
	Describe("New", func() {
		It("creates a default text logger", func() {
			var buf bytes.Buffer
			l := logging.New(logging.WithWriter(&buf))
			l.Info("hello", "key", "value")

			output := buf.String()
			Expect(output).To(ContainSubstring("hello"))
			Expect(output).To(ContainSubstring("key"))
			Expect(output).To(ContainSubstring("value"))
		})

		It("respects debug level", func() {
			var buf bytes.Buffer
			l := logging.New(logging.WithWriter(&buf), logging.WithDebug(true))
			l.Debug("debug msg")

			Expect(buf.String()).To(ContainSubstring("debug msg"))
		})

		It("filters debug when not enabled", func() {
			var buf bytes.Buffer
			l := logging.New(logging.WithWriter(&buf), logging.WithDebug(false))
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("creates a JSON logger", func() {
			var buf bytes.Buffer
			l := logging.New(logging.WithWriter(&buf), logging.WithJSON(true))
			l.Info("structured", "population", 42)

			var parsed map[string]any
			err := json.Unmarshal(buf.Bytes(), &parsed)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed["msg"]).To(Equal("structured"))
			Expect(parsed["population"]).To(BeNumerically("==", 42))
		})

		It("creates a pretty logger", func() {
			var buf bytes.Buffer
			l := logging.New(logging.WithWriter(&buf), logging.WithPretty(true))
			l.Info("pretty output")

			Expect(buf.String()).To(ContainSubstring("pretty output"))
		})

		It("supports multiple writers", func() {
			var buf1, buf2 bytes.Buffer
			l := logging.New(logging.WithWriters(&buf1, &buf2))
			l.Info("multi")

			Expect(buf1.String()).To(ContainSubstring("multi"))
			Expect(buf2.String()).To(ContainSubstring("multi"))
		})
	})

	Describe("Nop", func() {
		It("does not panic on any method", func() {
			l := logging.Nop()
			Expect(func() {
				l.Debug("msg")
				l.Info("msg")
				l.Warn("msg")
				l.Error("msg")
				l.With("key", "value").Info("msg")
				l.WithGroup("group").Info("msg")
			}).NotTo(Panic())
		})

		It("reports disabled for all levels", func() {
			l := logging.Nop()
			Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
		})
	})

	Describe("Multi", func() {
		It("dispatches to all loggers", func() {
			var buf1, buf2 bytes.Buffer
			l1 := logging.New(logging.WithWriter(&buf1))
			l2 := logging.New(logging.WithWriter(&buf2), logging.WithJSON(true))
			multi := logging.Multi(l1, l2)

			multi.Info("broadcast", "key", "val")

			Expect(buf1.String()).To(ContainSubstring("broadcast"))
			Expect(buf2.String()).To(ContainSubstring("broadcast"))
		})

		It("supports With on the fanned-out logger", func() {
			var buf bytes.Buffer
			l := logging.New(logging.WithWriter(&buf), logging.WithJSON(true))
			multi := logging.Multi(l)

			multi.With("run", "shell_1700000000").Info("saved")

			var parsed map[string]any
			err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed["run"]).To(Equal("shell_1700000000"))
		})

		It("supports WithGroup on the fanned-out logger", func() {
			var buf bytes.Buffer
			l := logging.New(logging.WithWriter(&buf), logging.WithJSON(true))
			multi := logging.Multi(l)

			multi.WithGroup("tick").Info("advanced", "step", 3)

			var parsed map[string]any
			err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)
			Expect(err).NotTo(HaveOccurred())

			group, ok := parsed["tick"].(map[string]any)
			Expect(ok).To(BeTrue(), "expected 'tick' group in JSON output")
			Expect(group["step"]).To(BeNumerically("==", 3))
		})
	})
})
