package layout

import (
	"bytes"
	"context"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowscope/pkg/config"
	"github.com/matzehuels/flowscope/pkg/errors"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// Compute lays out the visible projection of the state with Graphviz and
// stores the result: a placement for every visible node and container, and a
// routing spline for every visible edge and hyperedge. Previously stored
// geometry is cleared first, so hidden entities never keep stale positions.
func Compute(ctx context.Context, s *vizstate.State, cfg config.Config) error {
	dot := BuildDOT(s, cfg)

	xdot, err := runGraphviz(ctx, dot, cfg.Layout.Engine)
	if err != nil {
		return err
	}

	s.ClearLayout()
	if err := ApplyXDOT(s, xdot); err != nil {
		return err
	}
	return nil
}

func runGraphviz(ctx context.Context, dot, engine string) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeLayout, err, "init graphviz")
	}
	defer gv.Close()

	if engine != "" {
		gv.SetLayout(graphviz.Layout(engine))
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeLayout, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return "", errors.Wrap(errors.ErrCodeLayout, err, "layout")
	}
	return buf.String(), nil
}
