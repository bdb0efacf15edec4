package lucien

import (
	"fmt"
	"net/http"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// QueryServer exposes one octree over a websocket: clients insert, move,
// and remove entities and run plane queries as JSON messages. Every
// request gets exactly one response frame.
type QueryServer struct {
	index    *Octree[uint64, string]
	idGen    SequentialIDGenerator
	upgrader websocket.Upgrader
	handlers map[string]func(*queryRequest) queryResponse
}

func NewQueryServer(opts OctreeOptions) *QueryServer {
	qs := &QueryServer{
		index: NewOctree[uint64, string](opts),
	}
	qs.handlers = map[string]func(*queryRequest) queryResponse{
		"insert": qs.handleInsert,
		"move":   qs.handleMove,
		"remove": qs.handleRemove,
		"query":  qs.handleQuery,
	}
	return qs
}

type planeSpec struct {
	Point  mgl32.Vec3 `json:"point"`
	Normal mgl32.Vec3 `json:"normal"`
}

type queryRequest struct {
	Op          string        `json:"op"`
	ID          uint64        `json:"id,omitempty"`
	Content     string        `json:"content,omitempty"`
	Position    *mgl32.Vec3   `json:"position,omitempty"`
	Bounds      *EntityBounds `json:"bounds,omitempty"`
	Plane       *planeSpec    `json:"plane,omitempty"`
	Tolerance   float32       `json:"tolerance,omitempty"`
	Side        string        `json:"side,omitempty"`
	MaxDistance float32       `json:"max_distance,omitempty"`
}

type queryResponse struct {
	Op      string     `json:"op"`
	ID      uint64     `json:"id,omitempty"`
	Count   int        `json:"count,omitempty"`
	Results []queryHit `json:"results,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type queryHit struct {
	Entity   uint64        `json:"entity"`
	Content  string        `json:"content"`
	Distance float32       `json:"distance"`
	Point    mgl32.Vec3    `json:"point"`
	Type     string        `json:"type"`
	Bounds   *EntityBounds `json:"bounds,omitempty"`
}

// ServeHTTP upgrades the connection and dispatches request frames until
// the client goes away.
func (qs *QueryServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := qs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("query server: upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	log.Infof("query server: client connected from %s", conn.RemoteAddr())

	for {
		var req queryRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Errorf("query server: read failed: %v", err)
			}
			return
		}

		handler, ok := qs.handlers[req.Op]
		var resp queryResponse
		if ok {
			resp = handler(&req)
		} else {
			resp = queryResponse{Op: req.Op, Error: fmt.Sprintf("unknown op %q", req.Op)}
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.Errorf("query server: write failed: %v", err)
			return
		}
	}
}

func (qs *QueryServer) handleInsert(req *queryRequest) queryResponse {
	if req.Position == nil {
		return queryResponse{Op: req.Op, Error: "insert requires a position"}
	}
	id := req.ID
	if id == 0 {
		id = qs.idGen.NextID()
	}
	if req.Bounds != nil {
		qs.index.InsertBounded(id, req.Content, *req.Position, *req.Bounds)
	} else {
		qs.index.Insert(id, req.Content, *req.Position)
	}
	return queryResponse{Op: req.Op, ID: id, Count: qs.index.Count()}
}

func (qs *QueryServer) handleMove(req *queryRequest) queryResponse {
	if req.Position == nil {
		return queryResponse{Op: req.Op, ID: req.ID, Error: "move requires a position"}
	}
	if err := qs.index.UpdatePosition(req.ID, *req.Position); err != nil {
		return queryResponse{Op: req.Op, ID: req.ID, Error: err.Error()}
	}
	return queryResponse{Op: req.Op, ID: req.ID}
}

func (qs *QueryServer) handleRemove(req *queryRequest) queryResponse {
	if !qs.index.Remove(req.ID) {
		return queryResponse{Op: req.Op, ID: req.ID, Error: "unknown entity"}
	}
	return queryResponse{Op: req.Op, ID: req.ID, Count: qs.index.Count()}
}

func (qs *QueryServer) handleQuery(req *queryRequest) queryResponse {
	if req.Plane == nil {
		return queryResponse{Op: req.Op, Error: "query requires a plane"}
	}
	plane := NewPlane(req.Plane.Point, req.Plane.Normal)

	if req.Side != "" && (req.Tolerance != 0 || req.MaxDistance != 0) {
		return queryResponse{Op: req.Op, Error: "tolerance and max_distance do not combine with side"}
	}
	if req.Tolerance != 0 && req.MaxDistance != 0 {
		return queryResponse{Op: req.Op, Error: "tolerance and max_distance are mutually exclusive"}
	}

	var hits []PlaneIntersection[uint64, string]
	switch req.Side {
	case "":
		if req.MaxDistance > 0 {
			hits = qs.index.PlaneIntersectWithinDistance(plane, req.MaxDistance)
		} else {
			hits = qs.index.PlaneIntersectAll(plane, req.Tolerance)
		}
	case "positive":
		hits = qs.index.PlaneIntersectPositiveSide(plane)
	case "negative":
		hits = qs.index.PlaneIntersectNegativeSide(plane)
	default:
		return queryResponse{Op: req.Op, Error: fmt.Sprintf("unknown side %q", req.Side)}
	}

	results := make([]queryHit, 0, len(hits))
	for _, hit := range hits {
		results = append(results, queryHit{
			Entity:   hit.EntityID(),
			Content:  hit.Content(),
			Distance: hit.DistanceFromPlane(),
			Point:    hit.ClosestPoint(),
			Type:     hit.Type().String(),
			Bounds:   hit.Bounds(),
		})
	}
	return queryResponse{Op: req.Op, Count: len(results), Results: results}
}
