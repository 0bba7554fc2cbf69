package synth

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/unitgen/internal/castgen"
	"github.com/roach88/unitgen/internal/compiler"
	"github.com/roach88/unitgen/internal/expr"
	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/strategy"
)

// DefaultWorkers is the parallelism used when Workers is not set.
const DefaultWorkers = 4

// Synthesizer builds conversion functions for categories.
type Synthesizer struct {
	// Logger receives progress at debug level. Nil discards it.
	Logger *zap.Logger

	// Workers bounds the number of endpoints processed at once.
	Workers int
}

// Conversion is one synthesised function with its expression tree.
type Conversion struct {
	Spec ir.ConversionSpec
	Tree expr.Expr
}

// Result is the ordered conversion set of one category.
type Result struct {
	Category    *ir.Category
	Conversions []Conversion
}

// Specs returns the conversion specs in order.
func (r *Result) Specs() []ir.ConversionSpec {
	out := make([]ir.ConversionSpec, len(r.Conversions))
	for i, c := range r.Conversions {
		out[i] = c.Spec
	}
	return out
}

// Lookup returns the conversion with the given function name.
func (r *Result) Lookup(name string) (Conversion, bool) {
	for _, c := range r.Conversions {
		if c.Spec.Name == name {
			return c, true
		}
	}
	return Conversion{}, false
}

func (s *Synthesizer) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Synthesizer) workers() int {
	if s.Workers <= 0 {
		return DefaultWorkers
	}
	return s.Workers
}

// All synthesises every category. Categories are processed in parallel;
// results keep the order of cats. The first failing category aborts the
// run.
func (s *Synthesizer) All(ctx context.Context, cats []*ir.Category) ([]*Result, error) {
	results := make([]*Result, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, cat := range cats {
		g.Go(func() error {
			r, err := s.Category(gctx, cat)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Category synthesises every conversion of cat.
func (s *Synthesizer) Category(ctx context.Context, cat *ir.Category) (*Result, error) {
	if err := compiler.Check(cat); err != nil {
		return nil, err
	}
	if units := cat.DistinctUnits(); len(units) != len(cat.Units) {
		c := *cat
		c.Units = units
		cat = &c
	}
	log := s.logger().With(zap.String("category", cat.Name))

	set := newSpecSet(cat.Name)
	endpoints := cat.UnitEndpoints()
	numerics := ir.NumericEndpoints()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for _, e := range endpoints {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, d := range endpoints {
				if d == e {
					continue
				}
				if err := set.build(cat, e, d); err != nil {
					return err
				}
			}
			for _, n := range numerics {
				if err := set.build(cat, e, n); err != nil {
					return err
				}
				if err := set.build(cat, n, e); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	convs := set.ordered()
	log.Debug("synthesised category",
		zap.Int("endpoints", len(endpoints)),
		zap.Int("conversions", len(convs)),
		zap.Int("collapsed", set.collapsed))
	return &Result{Category: cat, Conversions: convs}, nil
}

// specSet deduplicates conversions by signature.
type specSet struct {
	category  string
	mu        sync.Mutex
	bySig     map[string]Conversion
	collapsed int
}

func newSpecSet(category string) *specSet {
	return &specSet{category: category, bySig: make(map[string]Conversion)}
}

func (s *specSet) build(cat *ir.Category, src, dst ir.Endpoint) error {
	c, err := Build(cat, src, dst)
	if err != nil {
		return err
	}
	return s.add(c)
}

func (s *specSet) add(c Conversion) error {
	sig := c.Spec.Signature()

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.bySig[sig]
	if !ok {
		s.bySig[sig] = c
		return nil
	}
	if prev.Spec.Body != c.Spec.Body || prev.Spec.DestType != c.Spec.DestType {
		return &InvariantError{
			Code:      ErrCodeDuplicateSignature,
			Message:   "two conversions render the same signature with different bodies",
			Category:  s.category,
			Signature: sig,
		}
	}
	s.collapsed++
	return nil
}

// ordered returns the conversions sorted by signature with name
// uniqueness filled in.
func (s *specSet) ordered() []Conversion {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Conversion, 0, len(s.bySig))
	names := make(map[string]int, len(s.bySig))
	for _, c := range s.bySig {
		out = append(out, c)
		names[c.Spec.Name]++
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Spec.Signature() < out[j].Spec.Signature()
	})
	for i := range out {
		out[i].Spec.UniqueName = names[out[i].Spec.Name] == 1
	}
	return out
}

// Build synthesises the single conversion from src to dst in cat.
func Build(cat *ir.Category, src, dst ir.Endpoint) (Conversion, error) {
	param := ir.ParamName(src, dst)
	x := expr.Ref{Name: param, Type: src.Kind}

	var tree expr.Expr
	if src.IsUnit() && dst.IsUnit() {
		var err error
		tree, err = strategy.Build(cat, src, dst, x)
		if err != nil {
			return Conversion{}, fmt.Errorf("%s: %w", ir.FunctionName(src, dst), err)
		}
	} else {
		tree = castgen.Cast(castgen.FromEndpoint(src), castgen.FromEndpoint(dst), x)
	}

	decl := ir.Declaration(src, dst)
	spec := ir.ConversionSpec{
		ID:          ir.SpecID(cat.Name, decl),
		Category:    cat.Name,
		Name:        ir.FunctionName(src, dst),
		Source:      src,
		Dest:        dst,
		SourceType:  src.TypeName(),
		DestType:    dst.TypeName(),
		Param:       param,
		Declaration: decl,
		Body:        expr.Render(tree),
	}
	return Conversion{Spec: spec, Tree: tree}, nil
}
