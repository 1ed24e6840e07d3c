// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vicaya

import "errors"

// Sentinel errors for the indexing and query substrate. Callers compare
// against these with errors.Is; none of them are retried internally.
var (
	// ErrCapacityExceeded is returned by FileTable.Insert when the table
	// already holds math.MaxUint32 entries. Fatal: the caller must rebuild.
	ErrCapacityExceeded = errors.New("vicaya: file table capacity exceeded")

	// ErrSerialization is returned by the snapshot codec when a payload is
	// malformed. The caller treats this the same as "no snapshot".
	ErrSerialization = errors.New("vicaya: snapshot serialization error")

	// ErrInvalidRequest is returned for malformed daemon requests, such as
	// an empty query with a positive limit.
	ErrInvalidRequest = errors.New("vicaya: invalid request")
)
