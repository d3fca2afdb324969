// Copyright 2025 The fusedex authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package fusion merges independently produced document rankings into a
// single ranked list.
//
// Two methods are provided. Reciprocal Rank Fusion (RRF) ignores raw scores
// and combines positional reciprocal weights, which makes it robust when the
// input lists use incomparable score scales. Distribution-Based Score Fusion
// (DBSF) normalizes each list's raw scores by their distribution (z-score
// clipped at three standard deviations, rescaled to [0,1]) and sums the
// normalized contributions.
//
// Raw scores from different retrieval backends are never compared directly;
// fusion always normalizes first.
package fusion
