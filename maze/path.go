package maze

// steps lists the four unit moves in the order the search expands them: up, right, down, left.
var steps = [4]Position{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// Reachable reports whether a route of adjacent non-wall blocks connects from and to.
// The check is a plain breadth-first search and uses no randomness.
func (g *Grid) Reachable(from, to Position) bool {
	_, ok := g.ShortestPath(from, to)
	return ok
}

// ShortestPath returns the blocks of a shortest route from `from` to `to`, both included.
// ok is false when either end is a wall or no route exists.
func (g *Grid) ShortestPath(from, to Position) (route []Position, ok bool) {
	if g.IsWall(from) || g.IsWall(to) {
		return nil, false
	}

	cameFrom := make(map[Position]Position, g.width*g.height)
	cameFrom[from] = from
	queue := []Position{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == to {
			return buildRoute(cameFrom, from, to), true
		}

		for _, step := range steps {
			next := current.Add(step.X, step.Y)
			if _, seen := cameFrom[next]; seen || g.IsWall(next) {
				continue
			}
			cameFrom[next] = current
			queue = append(queue, next)
		}
	}

	return nil, false
}

// buildRoute walks the cameFrom tree back from `to` and returns the route in forward order.
func buildRoute(cameFrom map[Position]Position, from, to Position) []Position {
	route := []Position{to}
	for current := to; current != from; {
		current = cameFrom[current]
		route = append(route, current)
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}
