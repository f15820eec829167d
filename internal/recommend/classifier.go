// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/tomtom215/triprec/internal/recommend/neighbors"
)

// Fullness labels.
const (
	LabelFull    = "Penuh"
	LabelNotFull = "Tidak Penuh"
)

// FullnessLabel returns LabelFull for a trip that sold exactly every seat.
func FullnessLabel(occupancy float64) string {
	if math.Abs(occupancy-1) < 1e-9 {
		return LabelFull
	}
	return LabelNotFull
}

// ClassMetrics is the hold-out report for one label.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation is the hold-out report of the fullness classifier.
type Evaluation struct {
	K         int            `json:"k"`
	TrainSize int            `json:"train_size"`
	TestSize  int            `json:"test_size"`
	Accuracy  float64        `json:"accuracy"`
	Classes   []ClassMetrics `json:"classes"`
}

// Classification is a fullness prediction.
type Classification struct {
	Label string         `json:"label"`
	Votes map[string]int `json:"votes"`
}

// Classifier predicts fullness by majority vote of the K nearest training
// trips. Vote ties go to the label that sorts first.
type Classifier struct {
	index  *neighbors.Index
	labels []string
	k      int
}

// Predict classifies a normalized feature vector.
func (c *Classifier) Predict(ctx context.Context, v []float64) (Classification, error) {
	found, err := c.index.Query(ctx, v, c.k)
	if err != nil {
		return Classification{}, fmt.Errorf("classify: %w", err)
	}

	votes := make(map[string]int, 2)
	for _, n := range found {
		votes[c.labels[n.Position]]++
	}

	best := ""
	for label, count := range votes {
		if best == "" || count > votes[best] || (count == votes[best] && label < best) {
			best = label
		}
	}
	return Classification{Label: best, Votes: votes}, nil
}

// trainClassifier splits the corpus, fits a classifier on the training part
// and scores it on the held-out part. The evaluation is nil when the corpus
// is too small to hold anything out; the classifier is then fitted on every
// trip.
func trainClassifier(ctx context.Context, ids []string, vectors [][]float64, labels []string, cfg *Config, metric neighbors.Metric) (*Classifier, *Evaluation, error) {
	train, test := stratifiedSplit(labels, cfg.Classifier.TestFraction, cfg.Classifier.Seed)
	if len(test) == 0 {
		train = make([]int, len(ids))
		for i := range train {
			train[i] = i
		}
	}

	trainIDs := make([]string, len(train))
	trainVecs := make([][]float64, len(train))
	trainLabels := make([]string, len(train))
	for i, pos := range train {
		trainIDs[i] = ids[pos]
		trainVecs[i] = vectors[pos]
		trainLabels[i] = labels[pos]
	}

	index, err := neighbors.New(trainIDs, trainVecs, neighbors.Options{
		Metric:            metric,
		ParallelThreshold: cfg.Search.ParallelThreshold,
		Workers:           cfg.Search.Workers,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("classifier index: %w", err)
	}
	clf := &Classifier{index: index, labels: trainLabels, k: min(cfg.Classifier.K, len(train))}
	if len(test) == 0 {
		return clf, nil, nil
	}

	actual := make([]string, len(test))
	predicted := make([]string, len(test))
	for i, pos := range test {
		c, err := clf.Predict(ctx, vectors[pos])
		if err != nil {
			return nil, nil, err
		}
		actual[i] = labels[pos]
		predicted[i] = c.Label
	}

	eval := evaluate(actual, predicted)
	eval.K = clf.k
	eval.TrainSize = len(train)
	return clf, eval, nil
}

// stratifiedSplit holds out roughly testFraction of every label, keeping at
// least one member of each label for training. Both outputs are positions in
// ascending order.
func stratifiedSplit(labels []string, testFraction float64, seed int64) (train, test []int) {
	groups := make(map[string][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split, not security sensitive
	for _, k := range keys {
		members := slices.Clone(groups[k])
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })

		nTest := int(math.Round(float64(len(members)) * testFraction))
		if nTest >= len(members) {
			nTest = len(members) - 1
		}
		test = append(test, members[:nTest]...)
		train = append(train, members[nTest:]...)
	}

	slices.Sort(train)
	slices.Sort(test)
	return train, test
}

func evaluate(actual, predicted []string) *Evaluation {
	labelSet := make(map[string]struct{})
	correct := 0
	for i := range actual {
		labelSet[actual[i]] = struct{}{}
		labelSet[predicted[i]] = struct{}{}
		if actual[i] == predicted[i] {
			correct++
		}
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	eval := &Evaluation{
		TestSize: len(actual),
		Accuracy: float64(correct) / float64(len(actual)),
		Classes:  make([]ClassMetrics, 0, len(labels)),
	}
	for _, label := range labels {
		var tp, fp, fn int
		for i := range actual {
			switch {
			case actual[i] == label && predicted[i] == label:
				tp++
			case actual[i] != label && predicted[i] == label:
				fp++
			case actual[i] == label && predicted[i] != label:
				fn++
			}
		}
		m := ClassMetrics{Label: label, Support: tp + fn}
		if tp+fp > 0 {
			m.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			m.Recall = float64(tp) / float64(tp+fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		eval.Classes = append(eval.Classes, m)
	}
	return eval
}
