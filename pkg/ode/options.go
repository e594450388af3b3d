package ode

import (
	"log/slog"

	"github.com/edp1096/piline/internal/consts"
)

type Options struct {
	Method   Method
	AbsTol   float64
	RelTol   float64
	MaxStep  float64 // 0: bounded by the grid spacing only
	MinStep  float64
	MaxSteps int
	Logger   *slog.Logger
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Method:   GearMethod,
		AbsTol:   consts.DefaultAbsTol,
		RelTol:   consts.DefaultRelTol,
		MinStep:  consts.DefaultMinStep,
		MaxSteps: consts.DefaultMaxSteps,
	}
}

func WithMethod(m Method) Option {
	return func(o *Options) { o.Method = m }
}

func WithTolerances(abs, rel float64) Option {
	return func(o *Options) {
		if abs > 0 {
			o.AbsTol = abs
		}
		if rel > 0 {
			o.RelTol = rel
		}
	}
}

func WithMaxStep(h float64) Option {
	return func(o *Options) { o.MaxStep = h }
}

func WithMinStep(h float64) Option {
	return func(o *Options) {
		if h > 0 {
			o.MinStep = h
		}
	}
}

func WithMaxSteps(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxSteps = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
