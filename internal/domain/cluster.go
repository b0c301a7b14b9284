package domain

// Point is a latitude/longitude pair in radians.
type Point struct {
	Lat float64
	Lon float64
}

// Metric returns the distance between two points.
type Metric func(a, b Point) float64

// Haversine is the unit-sphere great-circle Metric.
func Haversine(a, b Point) float64 {
	return HaversineRadians(a.Lat, a.Lon, b.Lat, b.Lon)
}

// DBSCAN labels points by density. A point is core when at least minSamples
// points, itself included, lie within eps of it. Clusters are grown from core
// points in input order; non-core points reachable from a core point join the
// first cluster that reaches them. Everything else is NoiseCluster. Labels
// start at 0 and are deterministic for a given point order.
func DBSCAN(points []Point, eps float64, minSamples int, metric Metric) []int {
	n := len(points)
	labels := make([]int, n)
	neighbors := make([][]int, n)
	core := make([]bool, n)

	for i := range points {
		labels[i] = NoiseCluster
		for j := range points {
			if metric(points[i], points[j]) <= eps {
				neighbors[i] = append(neighbors[i], j)
			}
		}
		core[i] = len(neighbors[i]) >= minSamples
	}

	next := 0
	for i := range points {
		if labels[i] != NoiseCluster || !core[i] {
			continue
		}
		labels[i] = next
		stack := []int{i}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, q := range neighbors[p] {
				if labels[q] != NoiseCluster {
					continue
				}
				labels[q] = next
				if core[q] {
					stack = append(stack, q)
				}
			}
		}
		next++
	}
	return labels
}

// HotspotClusters is the clustering outcome for a station set.
type HotspotClusters struct {
	// Labels is aligned with the input stations; nil for non-High stations.
	Labels   []*int
	Clusters int
	Noise    int
}

// ClusterHotspots runs DBSCAN with the haversine metric over the High stations
// only, converting their coordinates to radians first.
func ClusterHotspots(stations []Station, risks []Risk, eps float64, minSamples int) HotspotClusters {
	var (
		idx    []int
		points []Point
	)
	for i, s := range stations {
		if risks[i] != RiskHigh {
			continue
		}
		idx = append(idx, i)
		points = append(points, Point{Lat: toRadians(s.Latitude), Lon: toRadians(s.Longitude)})
	}

	labels := DBSCAN(points, eps, minSamples, Haversine)

	res := HotspotClusters{Labels: make([]*int, len(stations))}
	seen := make(map[int]struct{})
	for k, label := range labels {
		v := label
		res.Labels[idx[k]] = &v
		if label == NoiseCluster {
			res.Noise++
			continue
		}
		seen[label] = struct{}{}
	}
	res.Clusters = len(seen)
	return res
}
