/*
 * Copyright 2019 Dgraph Labs, Inc. and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cms

import "github.com/pkg/errors"

// Sentinel construction errors. Callers can compare against these with
// errors.Is even though New/NewWithError wrap them with a stack trace.
var (
	ErrInvalidDepth      = errors.New("cms: depth must be >= 1")
	ErrInvalidWidth      = errors.New("cms: width must be >= 1")
	ErrInvalidSampleSize = errors.New("cms: sample size must be > 0")
	ErrInvalidEpsilon    = errors.New("cms: epsilon must be in (0, 1)")
	ErrInvalidDelta      = errors.New("cms: delta must be in (0, 1)")
)
