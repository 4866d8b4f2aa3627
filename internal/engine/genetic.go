package engine

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/model"
)

// GeneticConfig holds parameters for the genetic algorithm optimizer.
type GeneticConfig struct {
	PopulationSize  int
	EliteCount      int
	Generations     int
	Seed            int64
	Threaded        bool
	Workers         int
	ShutdownTimeout time.Duration
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfigFromSettings(model.DefaultSettings())
}

// GeneticConfigFromSettings copies the optimizer fields of s. Zero workers
// means one per CPU.
func GeneticConfigFromSettings(s model.Settings) GeneticConfig {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return GeneticConfig{
		PopulationSize:  s.PopulationSize,
		EliteCount:      s.EliteCount,
		Generations:     s.Generations,
		Seed:            s.Seed,
		Threaded:        s.Threaded,
		Workers:         workers,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Validate checks population and elite sizes.
func (c GeneticConfig) Validate() error {
	if c.PopulationSize < 1 {
		return fmt.Errorf("%w: population size must be at least 1, got %d", ErrInvalidConfig, c.PopulationSize)
	}
	if c.EliteCount < 1 || c.EliteCount > c.PopulationSize {
		return fmt.Errorf("%w: elite count must be in [1, %d], got %d", ErrInvalidConfig, c.PopulationSize, c.EliteCount)
	}
	if c.Generations < 0 {
		return fmt.Errorf("%w: generations must not be negative", ErrInvalidConfig)
	}
	return nil
}

// State is the optimizer lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateReady
	StateEvaluating
	StateRanking
	StateBreeding
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateEvaluating:
		return "evaluating"
	case StateRanking:
		return "ranking"
	case StateBreeding:
		return "breeding"
	default:
		return "idle"
	}
}

// Solution is the best ordering of one generation and its packing.
type Solution struct {
	Generation int              `json:"generation"`
	Order      []int            `json:"order"`
	Fitness    float64          `json:"fitness"`
	Density    float64          `json:"density"` // Without the unplaced penalty
	Objective  string           `json:"objective"`
	Result     model.PackResult `json:"result"`
	Stats      GenerationStats  `json:"stats"`
}

// individual is one ordering of the population with its score.
type individual struct {
	order   []int
	fitness float64
	result  *model.PackResult
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the optimizer logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBatchScorer scores whole generations with s while it reports itself
// available. Failures fall back to the CPU pool for that generation.
func WithBatchScorer(s BatchScorer) Option {
	return func(o *Optimizer) {
		o.scorer = s
	}
}

// Optimizer searches box orderings with a genetic algorithm. Each
// generation is evaluated, ranked and bred in Step; cancellation is
// honored between generations only.
type Optimizer struct {
	config    GeneticConfig
	solverCfg SolverConfig
	factory   SolverFactory
	scorer    BatchScorer
	logger    *zap.Logger
	objective Objective

	rng        *rand.Rand
	boxes      []model.Box
	population [][]int
	eval       *evaluator
	generation int
	state      State
}

// NewOptimizer creates an optimizer. Call Init before stepping it.
func NewOptimizer(factory SolverFactory, solverCfg SolverConfig, config GeneticConfig, opts ...Option) *Optimizer {
	o := &Optimizer{
		config:    config,
		solverCfg: solverCfg,
		factory:   factory,
		logger:    zap.NewNop(),
		objective: ObjectiveFor(solverCfg.Growing),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Init validates the configuration and seeds the first population.
func (o *Optimizer) Init(boxes []model.Box) error {
	if len(boxes) == 0 {
		return ErrNoBoxes
	}
	if o.factory == nil {
		return fmt.Errorf("%w: no solver factory", ErrInvalidConfig)
	}
	if err := o.config.Validate(); err != nil {
		return err
	}
	if err := o.solverCfg.Validate(); err != nil {
		return err
	}

	o.boxes = append([]model.Box(nil), boxes...)
	o.rng = rand.New(rand.NewSource(o.config.Seed))
	o.population = o.seedPopulation()
	o.eval = newEvaluator(o.factory, o.solverCfg, o.boxes, o.config.Threaded,
		o.config.Workers, o.config.ShutdownTimeout, o.logger)
	o.generation = 0
	o.state = StateReady

	o.logger.Info("optimizer initialized",
		zap.Int("boxes", len(o.boxes)),
		zap.Int("population", o.config.PopulationSize),
		zap.Int("elite", o.config.EliteCount),
		zap.String("objective", o.objective.String()))
	return nil
}

// State returns the current lifecycle phase.
func (o *Optimizer) State() State {
	return o.state
}

// Generation returns how many generations have completed.
func (o *Optimizer) Generation() int {
	return o.generation
}

// Objective returns the objective derived from the solver config.
func (o *Optimizer) Objective() Objective {
	return o.objective
}

// Population returns a copy of the current population.
func (o *Optimizer) Population() [][]int {
	out := make([][]int, len(o.population))
	for i, p := range o.population {
		out[i] = copyOrder(p)
	}
	return out
}

// Step evaluates and ranks the current population, breeds the next one and
// returns the best solution of the evaluated generation.
func (o *Optimizer) Step(ctx context.Context) (Solution, error) {
	if o.state == StateIdle {
		return Solution{}, ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return Solution{}, err
	}

	o.state = StateEvaluating
	pop := o.scorePopulation(ctx)
	if err := ctx.Err(); err != nil {
		o.state = StateReady
		return Solution{}, err
	}

	o.state = StateRanking
	sort.SliceStable(pop, func(i, j int) bool {
		return o.objective.Better(pop[i].fitness, pop[j].fitness)
	})
	best := pop[0]
	if best.result == nil {
		res, err := referenceSolve(o.factory, o.solverCfg, o.boxes, best.order)
		if err != nil {
			o.state = StateReady
			return Solution{}, err
		}
		best.result = &res
	}

	fitness := make([]float64, len(pop))
	for i, ind := range pop {
		fitness[i] = ind.fitness
	}
	sol := Solution{
		Generation: o.generation,
		Order:      copyOrder(best.order),
		Fitness:    best.fitness,
		Density:    Density(*best.result, o.solverCfg.Bin.Size()),
		Objective:  o.objective.String(),
		Result:     *best.result,
		Stats:      computeStats(fitness),
	}

	o.state = StateBreeding
	o.population = o.breed(pop)
	o.generation++
	o.state = StateReady

	generationsTotal.Inc()
	bestFitness.WithLabelValues(o.objective.String()).Set(sol.Fitness)
	o.logger.Debug("generation complete",
		zap.Int("generation", sol.Generation),
		zap.Float64("best", sol.Fitness),
		zap.Float64("mean", sol.Stats.Mean),
		zap.Int("bins", len(sol.Result.Bins)))
	return sol, nil
}

// Run steps the optimizer for n generations and returns the best solution
// seen. onGeneration, if not nil, is called after every generation.
func (o *Optimizer) Run(ctx context.Context, n int, onGeneration func(Solution)) (Solution, error) {
	var best Solution
	found := false
	for i := 0; i < n; i++ {
		sol, err := o.Step(ctx)
		if err != nil {
			if found {
				return best, err
			}
			return Solution{}, err
		}
		if onGeneration != nil {
			onGeneration(sol)
		}
		if !found || o.objective.Better(sol.Fitness, best.Fitness) {
			best = sol
			found = true
		}
	}
	if !found {
		return Solution{}, fmt.Errorf("%w: no generations requested", ErrInvalidConfig)
	}
	return best, nil
}

func (o *Optimizer) scorePopulation(ctx context.Context) []individual {
	pop := make([]individual, len(o.population))

	if o.scorer != nil && o.scorer.Available() {
		scores, err := o.scorer.ScoreBatch(ctx, o.boxes, o.population)
		if err == nil && len(scores) != len(o.population) {
			err = fmt.Errorf("scorer returned %d scores for %d orderings", len(scores), len(o.population))
		}
		if err == nil {
			for i, order := range o.population {
				pop[i] = individual{order: order, fitness: scores[i]}
			}
			return pop
		}
		if ctx.Err() != nil {
			return nil
		}
		o.logger.Warn("batch scorer failed, using CPU evaluation", zap.Error(err))
	}

	evals := o.eval.evaluate(ctx, o.population)
	for i, order := range o.population {
		pop[i] = individual{order: order, fitness: evals[i].fitness}
		if evals[i].err == nil {
			pop[i].result = &evals[i].result
		}
	}
	return pop
}

// seedPopulation starts with three heuristic orderings followed by random
// permutations.
func (o *Optimizer) seedPopulation() [][]int {
	n := len(o.boxes)
	volume := func(i int) float64 { return o.boxes[i].Volume() }
	longest := func(i int) float64 { return o.boxes[i].Size.Longest() }

	seeds := [][]int{
		o.sortedOrder(func(a, b int) bool { return volume(a) < volume(b) }),
		o.sortedOrder(func(a, b int) bool { return volume(a) > volume(b) }),
		o.sortedOrder(func(a, b int) bool { return longest(a) > longest(b) }),
	}

	population := make([][]int, 0, o.config.PopulationSize)
	for _, s := range seeds {
		if len(population) == o.config.PopulationSize {
			break
		}
		population = append(population, s)
	}
	for len(population) < o.config.PopulationSize {
		population = append(population, o.rng.Perm(n))
	}
	return population
}

func (o *Optimizer) sortedOrder(less func(a, b int) bool) []int {
	order := make([]int, len(o.boxes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(order[i], order[j])
	})
	return order
}

// breed keeps the top EliteCount orderings unchanged and fills the rest of
// the population with children of elite parents.
func (o *Optimizer) breed(ranked []individual) [][]int {
	k := o.config.EliteCount
	if k > len(ranked) {
		k = len(ranked)
	}

	next := make([][]int, 0, o.config.PopulationSize)
	for i := 0; i < k; i++ {
		next = append(next, copyOrder(ranked[i].order))
	}
	for len(next) < o.config.PopulationSize {
		p1 := ranked[o.rng.Intn(k)].order
		if o.rng.Intn(2) == 0 {
			p2 := ranked[o.rng.Intn(k)].order
			next = append(next, o.orderCrossover(p1, p2))
		} else {
			next = append(next, o.swapMutation(p1))
		}
	}
	return next
}

// orderCrossover implements Order Crossover (OX1) with random cut points.
func (o *Optimizer) orderCrossover(parent1, parent2 []int) []int {
	n := len(parent1)
	if n < 2 {
		return copyOrder(parent1)
	}
	cut1 := o.rng.Intn(n)
	cut2 := o.rng.Intn(n)
	if cut1 > cut2 {
		cut1, cut2 = cut2, cut1
	}
	return crossoverAt(parent1, parent2, cut1, cut2)
}

// crossoverAt copies parent2's segment [cut1, cut2] into the child and fills
// the remaining positions with parent1's other genes in parent1's order,
// starting after cut2 and wrapping around.
func crossoverAt(parent1, parent2 []int, cut1, cut2 int) []int {
	n := len(parent1)
	child := make([]int, n)
	inSegment := make([]bool, n)
	for i := cut1; i <= cut2; i++ {
		child[i] = parent2[i]
		inSegment[parent2[i]] = true
	}

	fill := (cut2 + 1) % n
	for i := 0; i < n; i++ {
		gene := parent1[(cut2+1+i)%n]
		if inSegment[gene] {
			continue
		}
		child[fill] = gene
		fill = (fill + 1) % n
	}
	return child
}

// swapMutation swaps two distinct positions of a copy of order.
func (o *Optimizer) swapMutation(order []int) []int {
	child := copyOrder(order)
	n := len(child)
	if n < 2 {
		return child
	}
	i := o.rng.Intn(n)
	j := o.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	child[i], child[j] = child[j], child[i]
	return child
}

func copyOrder(order []int) []int {
	out := make([]int, len(order))
	copy(out, order)
	return out
}

// Optimize runs a full optimization for the given settings and returns the
// best solution found.
func Optimize(ctx context.Context, boxes []model.Box, bin model.Container, settings model.Settings, opts ...Option) (Solution, error) {
	o := NewOptimizer(nil, NewSolverConfig(bin, settings), GeneticConfigFromSettings(settings), opts...)
	factory, err := NewSolverFactory(settings.Strategy, o.logger)
	if err != nil {
		return Solution{}, err
	}
	o.factory = factory
	if err := o.Init(boxes); err != nil {
		return Solution{}, err
	}
	return o.Run(ctx, settings.Generations, nil)
}
