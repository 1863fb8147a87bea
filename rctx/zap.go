// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rctx

import "go.uber.org/zap"

// ZapLogger adapts a *zap.Logger to the Logger interface, turning the
// fields map into zap.Field pairs via zap.Any. This is the concrete Logger
// the CLI wires up for anything above debug verbosity; tests and library
// callers that want zero overhead keep using NoOpLogger.
type ZapLogger struct {
	z *zap.Logger
}

// NewZapLogger wraps z.
func NewZapLogger(z *zap.Logger) *ZapLogger {
	return &ZapLogger{z: z}
}

// NewProductionZapLogger builds a JSON-encoded, info-level *zap.Logger
// wrapped as a Logger, or falls back to NoOpLogger if construction fails.
func NewProductionZapLogger() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		return NoOpLogger{}
	}
	return NewZapLogger(z)
}

func toFields(fields map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) { l.z.Debug(msg, toFields(fields)...) }
func (l *ZapLogger) Info(msg string, fields map[string]interface{})  { l.z.Info(msg, toFields(fields)...) }
func (l *ZapLogger) Warn(msg string, fields map[string]interface{})  { l.z.Warn(msg, toFields(fields)...) }
func (l *ZapLogger) Error(msg string, fields map[string]interface{}) { l.z.Error(msg, toFields(fields)...) }
