package vcmp

import (
	"context"

	"github.com/pthm/vcmp/lib/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// dispatch runs the constructor hook of every pending instance under the
// session root, in document order at the time of the call. The pending marker
// is cleared whether or not a hook exists; a hook error is returned at once
// and leaves later instances pending. Instances an earlier hook removed from
// the tree are skipped.
func (s *session) dispatch(ctx context.Context) ([]*Instance, error) {
	pending := pendingNodes(s.root)
	instances := make([]*Instance, 0, len(pending))
	doc := dom.Document(s.root)

	for _, n := range pending {
		if dom.Document(n) != doc {
			continue
		}
		name, _ := dom.Attr(n, OriginAttr)
		inst := &Instance{Name: name, Node: n}
		instances = append(instances, inst)

		hook, ok := s.exp.hooks.Lookup(name)
		if !ok {
			dom.RemoveAttr(n, PendingAttr)
			continue
		}

		s.log.Debug("construct", zap.String("component", name))
		err := hook(ctx, inst)
		dom.RemoveAttr(n, PendingAttr)
		if err != nil {
			return nil, &HookInvocationError{Name: name, Err: err}
		}
	}
	return instances, nil
}

func pendingNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	if root.Type == html.ElementNode && dom.HasAttr(root, PendingAttr) {
		out = append(out, root)
	}
	return append(out, dom.ByAttr(root, PendingAttr)...)
}
