package main

import (
	"fmt"
	"strconv"
)

// ToTake selects how many games to sample from a corpus: a literal
// count, or every well-formed game ("all").
type ToTake struct {
	All bool
	N   int
}

// ParseToTake parses the CLI size selector: a non-negative integer or
// the literal token "all".
func ParseToTake(s string) (ToTake, error) {
	if s == "all" {
		return ToTake{All: true}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return ToTake{}, fmt.Errorf("number of games must be a non-negative integer or 'all', got %q", s)
	}
	return ToTake{N: n}, nil
}

func (t ToTake) String() string {
	if t.All {
		return "all"
	}
	return strconv.Itoa(t.N)
}

// Config is the immutable run configuration for the genetic algorithm.
// Built once from CLI input (or DefaultConfig in tests), never mutated.
type Config struct {
	InitPopulation int     `json:"initPopulation"`
	NumberOfGames  ToTake  `json:"-"`
	Generations    int     `json:"generations"`
	MutationRate   float64 `json:"mutationRate"`
	TournamentSize int     `json:"tournamentSize"`
	HeightMin      float64 `json:"heightMin"`
	HeightMax      float64 `json:"heightMax"`
	DevMin         float64 `json:"devMin"`
	DevMax         float64 `json:"devMax"`
	InputDBPath    string  `json:"-"`
	OutputPath     string  `json:"-"`

	// Seed drives every stochastic draw of the run. 0 means
	// time-derived, i.e. a non-reproducible run.
	Seed int64 `json:"seed"`

	// Fitness weighting. The default is pure size minimization;
	// raise SpeedWeight to trade compressed size for compress time
	// (weighted in mean bytes and mean milliseconds respectively).
	SizeWeight  float64 `json:"sizeWeight"`
	SpeedWeight float64 `json:"speedWeight"`

	// Workers bounds concurrent fitness evaluations; <=0 means
	// GOMAXPROCS.
	Workers int `json:"-"`
}

// DefaultConfig returns the tuning used during development. Tests
// override individual fields the same way the CLI does.
func DefaultConfig() Config {
	return Config{
		InitPopulation: 20,
		NumberOfGames:  ToTake{All: true},
		Generations:    10,
		MutationRate:   0.1,
		TournamentSize: 3,
		HeightMin:      0.0,
		HeightMax:      10.0,
		DevMin:         1.0,
		DevMax:         50.0,
		SizeWeight:     1.0,
		SpeedWeight:    0.0,
	}
}

// Validate rejects malformed configurations before any generation runs.
func (c Config) Validate() error {
	if c.InitPopulation == 0 {
		return fmt.Errorf("config: population size must be at least 1")
	}
	if c.InitPopulation < 0 {
		return fmt.Errorf("config: population size must be positive, got %d", c.InitPopulation)
	}
	if c.Generations < 1 {
		return fmt.Errorf("config: generations must be at least 1, got %d", c.Generations)
	}
	if c.TournamentSize == 0 {
		return fmt.Errorf("config: tournament size must be at least 1")
	}
	if c.TournamentSize < 0 || c.TournamentSize > c.InitPopulation {
		return fmt.Errorf("config: tournament size %d must be between 1 and the population size %d",
			c.TournamentSize, c.InitPopulation)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("config: mutation rate must be in [0,1], got %g", c.MutationRate)
	}
	if c.HeightMin > c.HeightMax {
		return fmt.Errorf("config: height bounds inverted: min %g > max %g", c.HeightMin, c.HeightMax)
	}
	if c.DevMin > c.DevMax {
		return fmt.Errorf("config: dev bounds inverted: min %g > max %g", c.DevMin, c.DevMax)
	}
	if c.DevMin <= 0 {
		return fmt.Errorf("config: dev lower bound must be positive, got %g", c.DevMin)
	}
	if c.SizeWeight < 0 || c.SpeedWeight < 0 {
		return fmt.Errorf("config: fitness weights must be non-negative")
	}
	return nil
}

// Verbose controls whether detailed run progress is printed to stderr.
var Verbose bool
