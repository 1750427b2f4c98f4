// Package logrus adapts a logrus logger to the resilite.Logger interface.
package logrus

import (
	lr "github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/resilite"
)

type LogrusLogger struct{ L lr.FieldLogger }

func (l LogrusLogger) Debug(msg string, f resilite.Fields) { l.L.WithFields(lr.Fields(f)).Debug(msg) }
func (l LogrusLogger) Info(msg string, f resilite.Fields)  { l.L.WithFields(lr.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f resilite.Fields)  { l.L.WithFields(lr.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f resilite.Fields) { l.L.WithFields(lr.Fields(f)).Error(msg) }
