package estimate

import (
	"math/rand/v2"
)

// Range диапазон случайного множителя
type Range struct {
	Min float64 `yaml:"min" json:"min" validate:"gte=0"`
	Max float64 `yaml:"max" json:"max" validate:"gtefield=Min"`
}

// Sampler источник множителей для оценок. В продакшене равномерное
// распределение, в тестах детерминированная середина диапазона.
type Sampler interface {
	Sample(r Range) float64
}

// SamplerFactory создает свой Sampler на каждый запрос
type SamplerFactory func() Sampler

// UniformSampler равномерное распределение на [Min, Max)
type UniformSampler struct {
	rng *rand.Rand
}

// NewUniformSampler создает сэмплер; seed == 0 означает случайное зерно
func NewUniformSampler(seed uint64) *UniformSampler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &UniformSampler{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (s *UniformSampler) Sample(r Range) float64 {
	return r.Min + s.rng.Float64()*(r.Max-r.Min)
}

// MidpointSampler всегда возвращает середину диапазона
type MidpointSampler struct{}

func (MidpointSampler) Sample(r Range) float64 {
	return (r.Min + r.Max) / 2
}

// UniformSamplers фабрика, выдающая независимый поток на каждый вызов
func UniformSamplers() SamplerFactory {
	return func() Sampler { return NewUniformSampler(0) }
}

// MidpointSamplers фабрика детерминированных сэмплеров
func MidpointSamplers() SamplerFactory {
	return func() Sampler { return MidpointSampler{} }
}
