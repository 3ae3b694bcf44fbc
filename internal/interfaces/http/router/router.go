// Package router declares the HTTP route table. Routes are collected into
// Group values first and mounted on the engine in one pass, so guards can be
// passed as nil when a deployment does not use them.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIPrefix is where versioned routes live
const APIPrefix = "/api/v1"

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// Group collects routes under a path prefix
type Group struct {
	prefix   string
	guards   []gin.HandlerFunc
	routes   []route
	children []*Group
}

// NewGroup starts a group at prefix. Nil guards are dropped.
func NewGroup(prefix string, guards ...gin.HandlerFunc) *Group {
	return &Group{prefix: prefix, guards: nonNil(guards)}
}

// Use appends guards that run for every route in the group and its children
func (g *Group) Use(guards ...gin.HandlerFunc) *Group {
	g.guards = append(g.guards, nonNil(guards)...)
	return g
}

// GET adds a route. Handlers before the last act as route guards.
func (g *Group) GET(path string, handlers ...gin.HandlerFunc) *Group {
	return g.add(http.MethodGet, path, handlers)
}

func (g *Group) POST(path string, handlers ...gin.HandlerFunc) *Group {
	return g.add(http.MethodPost, path, handlers)
}

func (g *Group) add(method, path string, handlers []gin.HandlerFunc) *Group {
	g.routes = append(g.routes, route{method: method, path: path, handlers: nonNil(handlers)})
	return g
}

// Child nests a group under g
func (g *Group) Child(prefix string, guards ...gin.HandlerFunc) *Group {
	c := NewGroup(prefix, guards...)
	g.children = append(g.children, c)
	return c
}

// Mount registers g and its children on parent
func (g *Group) Mount(parent gin.IRouter) {
	rg := parent.Group(g.prefix, g.guards...)
	for _, r := range g.routes {
		rg.Handle(r.method, r.path, r.handlers...)
	}
	for _, c := range g.children {
		c.Mount(rg)
	}
}

// Len counts the routes in g and its children
func (g *Group) Len() int {
	n := len(g.routes)
	for _, c := range g.children {
		n += c.Len()
	}
	return n
}

func nonNil(handlers []gin.HandlerFunc) []gin.HandlerFunc {
	out := handlers[:0:0]
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
