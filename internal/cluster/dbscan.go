package cluster

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

const noiseLabel = -1

// dbscan assigns each vector a cluster label, or noiseLabel for points
// without a dense enough neighborhood. A point's eps-neighborhood includes
// the point itself.
func dbscan(vectors [][]float64, eps float64, minPts int) []int {
	n := len(vectors)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = noiseLabel
	}
	visited := make([]bool, n)

	current := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(vectors, i, eps)
		if len(neighbors) < minPts {
			continue
		}

		expandCluster(vectors, i, neighbors, current, eps, minPts, visited, labels)
		current++
	}

	return labels
}

func expandCluster(vectors [][]float64, pointIdx int, neighbors []int, clusterLabel int, eps float64, minPts int, visited []bool, labels []int) {
	labels[pointIdx] = clusterLabel

	for i := 0; i < len(neighbors); i++ {
		idx := neighbors[i]

		if !visited[idx] {
			visited[idx] = true
			next := regionQuery(vectors, idx, eps)
			if len(next) >= minPts {
				for _, candidate := range next {
					if !slices.Contains(neighbors, candidate) {
						neighbors = append(neighbors, candidate)
					}
				}
			}
		}

		if labels[idx] == noiseLabel {
			labels[idx] = clusterLabel
		}
	}
}

func regionQuery(vectors [][]float64, pointIdx int, eps float64) []int {
	var neighbors []int
	for i := range vectors {
		if cosineDistance(vectors[pointIdx], vectors[i]) <= eps {
			neighbors = append(neighbors, i)
		}
	}
	return neighbors
}

// cosineDistance is 1 minus the cosine similarity of a and b. Zero vectors
// count as maximally distant.
func cosineDistance(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - floats.Dot(a, b)/(normA*normB)
}

// reassignNoise moves each noise point into the cluster with the nearest
// centroid by Euclidean distance. With no clusters at all the noise stays
// unassigned.
func reassignNoise(vectors [][]float64, labels []int) {
	clusterCount := 0
	for _, l := range labels {
		if l+1 > clusterCount {
			clusterCount = l + 1
		}
	}
	if clusterCount == 0 {
		return
	}

	dim := len(vectors[0])
	centroids := make([][]float64, clusterCount)
	counts := make([]int, clusterCount)
	for i := range centroids {
		centroids[i] = make([]float64, dim)
	}
	for i, l := range labels {
		if l == noiseLabel {
			continue
		}
		floats.Add(centroids[l], vectors[i])
		counts[l]++
	}
	for i := range centroids {
		if counts[i] > 0 {
			floats.Scale(1/float64(counts[i]), centroids[i])
		}
	}

	for i, l := range labels {
		if l != noiseLabel {
			continue
		}
		best := noiseLabel
		bestDist := math.Inf(1)
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			if d := floats.Distance(vectors[i], centroids[c], 2); d < bestDist {
				bestDist = d
				best = c
			}
		}
		if best != noiseLabel {
			labels[i] = best
		}
	}
}
