package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/identity"
)

// RollbarLogger reports to Rollbar and writes to a zap logger.
type RollbarLogger struct {
	z *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(z *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{z: z.Sugar()}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Sync flushes the zap buffers and waits for the pending Rollbar reports.
func (l *RollbarLogger) Sync() {
	_ = l.z.Sync()
	rollbar.Wait()
}

// expected fmt: msg | error, map[string]interface{}, identity.Session
func (l *RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []interface{}) {
	var sessSet bool
	reportArgs := make([]interface{}, 0, len(args)+1)
	reportArgs = append(reportArgs, msg)
	fields := make([]interface{}, 0, 2*len(args))

	for _, arg := range args {
		switch a := arg.(type) {
		case identity.Session:
			// only set one Session
			if !sessSet {
				rollbar.SetPerson(a.UserID, a.Name, a.Email)
				fields = append(fields, "user_id", a.UserID)
				sessSet = true
			}
			continue
		case error:
			fields = append(fields, zap.Error(a))
		case map[string]interface{}:
			for k, v := range a {
				fields = append(fields, k, v)
			}
		default:
			fields = append(fields, zap.Any("arg", a))
		}
		reportArgs = append(reportArgs, arg)
	}
	if !sessSet {
		rollbar.ClearPerson()
	}
	return reportArgs, fields
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Debug(report...)
	l.z.Debugw(msg, fields...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Info(report...)
	l.z.Infow(msg, fields...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Warning(report...)
	l.z.Warnw(msg, fields...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Error(report...)
	l.z.Errorw(msg, fields...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Critical(report...)
	rollbar.Wait()
	l.z.Fatalw(msg, fields...)
}
