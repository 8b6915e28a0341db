// Package synth generates synthetic background stacks. It is used by the
// command line tool to produce blank images and by tests as fixtures.
package synth

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"bgbootstrap/internal/models"
)

// Generator draws random background stacks from a seeded source
type Generator struct {
	src rand.Source
}

// NewGenerator creates a generator. A zero seed selects a clock-based seed.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{src: rand.NewSource(seed)}
}

// Source returns the underlying random source
func (g *Generator) Source() rand.Source {
	return g.src
}

// Poisson returns a (depth, height, width) stack of Poisson(lambda) counts,
// the usual model for photon noise in blank frames.
func (g *Generator) Poisson(lambda float64, depth, height, width int) *models.Array {
	dist := distuv.Poisson{Lambda: lambda, Src: g.src}
	data := make([]float64, depth*height*width)
	for i := range data {
		data[i] = dist.Rand()
	}
	return models.NewArray(data, depth, height, width)
}

// Normal returns an array of the given shape filled with N(mu, sigma) draws.
func (g *Generator) Normal(mu, sigma float64, shape ...int) *models.Array {
	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: g.src}
	arr := models.NewArray(nil, shape...)
	arr.Data = make([]float64, arr.Len())
	for i := range arr.Data {
		arr.Data[i] = dist.Rand()
	}
	return arr
}

// ExactPoisson returns n values whose empirical distribution matches the
// Poisson(lambda) CDF as closely as n allows, in a random order. Unlike
// Poisson, its percentiles are fixed for a given n.
func (g *Generator) ExactPoisson(lambda float64, n int) []float64 {
	dist := distuv.Poisson{Lambda: lambda}
	data := make([]float64, n)

	k := 0.0
	bound := int(math.Round(float64(n) * dist.CDF(k)))
	for i := range data {
		for i >= bound {
			k++
			bound = int(math.Round(float64(n) * dist.CDF(k)))
		}
		data[i] = k
	}

	rand.New(g.src).Shuffle(n, func(i, j int) {
		data[i], data[j] = data[j], data[i]
	})
	return data
}

// NormalScores returns n evenly spaced quantiles of N(0, 1) in increasing
// order, an idealized Gaussian sample.
func NormalScores(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
	}
	return out
}
