package main

import (
	"flag"
	"net/http"

	log "github.com/sirupsen/logrus"

	lucien "github.com/Hellblazer/Luciferase-sub003"
)

func main() {
	addr := flag.String("addr", ":7777", "listen address")
	cellSize := flag.Float64("cell-size", 64, "octree cell edge length")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	srv := lucien.NewQueryServer(lucien.OctreeOptions{CellSize: float32(*cellSize)})
	http.Handle("/query", srv)

	log.Infof("plane query server listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("server: %v", err)
	}
}
