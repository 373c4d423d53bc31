package graph

import (
	"reflect"
	"strconv"

	"github.com/casualjim/dataflow"
)

// TopicKey returns the node key of the topic called name.
func TopicKey(name string) string {
	return "T" + name
}

// AgentKey returns the node key of an agent instance carrying token.
func AgentKey(name, token string) string {
	return "A" + name + "#" + token
}

// FromTopics snapshots the topology registered on topics. Every topic becomes
// a node carrying its last message, every distinct agent instance becomes a
// node, subscriptions add topic -> agent edges and publications add
// agent -> topic edges.
//
// Instances are told apart by Identifier when available, otherwise by value
// equality. A non-comparable agent without an ID gets a fresh node for every
// registration, so one such instance may appear as several nodes and a cycle
// running through it is not detected.
func FromTopics(topics *dataflow.TopicManager) *Graph {
	g := New()
	ids := &identities{seen: make(map[dataflow.Agent]string)}

	for _, topic := range topics.Topics() {
		th := g.Ensure(TopicKey(topic.Name()), topic.Name(), KindTopic)
		g.SetMessage(th, topic.LastMessage())

		for _, sub := range topic.Subscribers() {
			ah := g.Ensure(AgentKey(sub.Name(), ids.token(sub)), sub.Name(), KindAgent)
			g.AddEdge(th, ah)
		}
		for _, pub := range topic.Publishers() {
			ah := g.Ensure(AgentKey(pub.Name(), ids.token(pub)), pub.Name(), KindAgent)
			g.AddEdge(ah, th)
		}
	}
	return g
}

// identities hands out per-instance tokens for agents that do not carry their
// own ID.
type identities struct {
	seen map[dataflow.Agent]string
	next int
}

func (i *identities) token(a dataflow.Agent) string {
	if ident, ok := a.(dataflow.Identifier); ok {
		return ident.ID()
	}
	if !reflect.TypeOf(a).Comparable() {
		return i.mint()
	}
	if tok, ok := i.seen[a]; ok {
		return tok
	}
	tok := i.mint()
	i.seen[a] = tok
	return tok
}

func (i *identities) mint() string {
	i.next++
	return "i" + strconv.Itoa(i.next)
}
