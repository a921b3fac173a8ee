package cli

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a JSON debug logger on stderr when --verbose is set.
func newLogger(globals *Globals) *zap.Logger {
	if globals == nil || !globals.Verbose || globals.Stderr == nil {
		return zap.NewNop()
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(globals.Stderr),
		zap.NewAtomicLevelAt(zap.DebugLevel),
	)
	return zap.New(core).With(zap.String("store", globals.Store))
}
