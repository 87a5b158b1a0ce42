package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"time"
)

// mutationScale sizes a gaussian mutation step relative to the gene's
// configured range.
const mutationScale = 0.1

// GenerationStat records the outcome of one evaluated generation.
type GenerationStat struct {
	Generation  int             `json:"generation"`
	BestFitness float64         `json:"bestFitness"`
	MeanFitness float64         `json:"meanFitness"`
	Best        ParameterVector `json:"best"`
}

// GenAlgoResult is the terminal outcome of one optimization run: the
// best individual ever observed (not merely the best of the final
// generation), the benchmark detail that produced its fitness, and the
// per-generation history.
type GenAlgoResult struct {
	Best       Individual
	BestDetail BenchmarkResult
	History    []GenerationStat
	Seed       int64
	Elapsed    time.Duration
}

// RunGenAlgo evolves (height, dev) for the dynamic coder over the given
// sample set. All stochastic draws (init, tournaments, crossover,
// mutation) come from a single seeded source in the serial sections, so
// two runs with the same seed are identical regardless of worker count;
// fitness evaluation is a pure function of the genes and may run
// concurrently.
func RunGenAlgo(ctx context.Context, samples SampleSet, cfg Config) (*GenAlgoResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrNoRecords
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	pop := make(Population, cfg.InitPopulation)
	for i := range pop {
		pop[i].Genes = ParameterVector{
			Height: uniform(rng, cfg.HeightMin, cfg.HeightMax),
			Dev:    uniform(rng, cfg.DevMin, cfg.DevMax),
		}
	}

	start := time.Now()
	result := &GenAlgoResult{Seed: seed, Best: Individual{Fitness: worstFitness}}

	for gen := 0; gen < cfg.Generations; gen++ {
		details, err := evaluatePopulation(ctx, samples, cfg, pop)
		if err != nil {
			return nil, err
		}

		bestIdx := 0
		sum := 0.0
		for i := range pop {
			sum += pop[i].Fitness
			if pop[i].Fitness > pop[bestIdx].Fitness {
				bestIdx = i
			}
		}
		if pop[bestIdx].Fitness > result.Best.Fitness {
			result.Best = pop[bestIdx]
			result.BestDetail = details[bestIdx]
		}
		result.History = append(result.History, GenerationStat{
			Generation:  gen,
			BestFitness: pop[bestIdx].Fitness,
			MeanFitness: sum / float64(len(pop)),
			Best:        pop[bestIdx].Genes,
		})
		if Verbose {
			fmt.Fprintf(os.Stderr, "[gen %d/%d] best=%.4f mean=%.4f height=%.4f dev=%.4f\n",
				gen+1, cfg.Generations, pop[bestIdx].Fitness, sum/float64(len(pop)),
				pop[bestIdx].Genes.Height, pop[bestIdx].Genes.Dev)
		}

		elite := pop[bestIdx]

		parents := selectParents(rng, pop, cfg.TournamentSize)
		next := reproduce(rng, parents, cfg)
		// Elitism: the generation's best survives unmodified, so the
		// best fitness seen so far never decreases.
		next[len(next)-1] = elite
		pop = next
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

// evaluatePopulation computes fitness for every individual through a
// bounded worker pool. It blocks until the whole generation is scored:
// selection must not start on partial results.
func evaluatePopulation(ctx context.Context, samples SampleSet, cfg Config, pop Population) ([]BenchmarkResult, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(pop) {
		workers = len(pop)
	}

	details := make([]BenchmarkResult, len(pop))
	errs := make([]error, len(pop))
	idxCh := make(chan int, len(pop))
	for i := range pop {
		idxCh <- i
	}
	close(idxCh)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				ev, err := evaluateVector(ctx, samples, cfg, pop[i].Genes)
				if err != nil {
					errs[i] = err
					continue
				}
				pop[i].Fitness = ev.score
				details[i] = ev.detail
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return details, nil
}

// selectParents fills a parent pool of population size by running
// independent tournaments: each draws tournamentSize individuals
// without replacement and keeps the fittest.
func selectParents(rng *rand.Rand, pop Population, tournamentSize int) Population {
	parents := make(Population, len(pop))
	for i := range parents {
		draw := rng.Perm(len(pop))[:tournamentSize]
		best := pop[draw[0]]
		for _, idx := range draw[1:] {
			if pop[idx].Fitness > best.Fitness {
				best = pop[idx]
			}
		}
		parents[i] = best
	}
	return parents
}

// reproduce pairs parents sequentially and produces one offspring per
// parent via per-gene arithmetic blending, then mutates. Output size
// equals input size.
func reproduce(rng *rand.Rand, parents Population, cfg Config) Population {
	next := make(Population, 0, len(parents))
	for i := 0; i < len(parents); i += 2 {
		if i+1 >= len(parents) {
			// Odd pool: the leftover parent clones through.
			next = append(next, mutate(rng, parents[i], cfg))
			break
		}
		a, b := parents[i], parents[i+1]
		next = append(next, mutate(rng, crossover(rng, a, b, cfg), cfg))
		if len(next) < len(parents) {
			next = append(next, mutate(rng, crossover(rng, a, b, cfg), cfg))
		}
	}
	return next
}

// crossover blends each gene as a + α·(b−a) with α drawn fresh per
// gene, clamped back into bounds.
func crossover(rng *rand.Rand, a, b Individual, cfg Config) Individual {
	blend := func(x, y float64) float64 { return x + rng.Float64()*(y-x) }
	return Individual{Genes: ParameterVector{
		Height: clamp(blend(a.Genes.Height, b.Genes.Height), cfg.HeightMin, cfg.HeightMax),
		Dev:    clamp(blend(a.Genes.Dev, b.Genes.Dev), cfg.DevMin, cfg.DevMax),
	}}
}

// mutate perturbs each gene independently with probability
// cfg.MutationRate by a gaussian step scaled to the gene's range, then
// re-clamps. Fitness is left stale; the next Evaluate overwrites it.
func mutate(rng *rand.Rand, ind Individual, cfg Config) Individual {
	if rng.Float64() < cfg.MutationRate {
		step := rng.NormFloat64() * mutationScale * (cfg.HeightMax - cfg.HeightMin)
		ind.Genes.Height = clamp(ind.Genes.Height+step, cfg.HeightMin, cfg.HeightMax)
	}
	if rng.Float64() < cfg.MutationRate {
		step := rng.NormFloat64() * mutationScale * (cfg.DevMax - cfg.DevMin)
		ind.Genes.Dev = clamp(ind.Genes.Dev+step, cfg.DevMin, cfg.DevMax)
	}
	ind.Fitness = 0
	return ind
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
