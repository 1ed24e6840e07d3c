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

// Package vicaya holds the in-memory data model of the local filesystem
// search substrate: the string arena, the dense file table, and the
// trigram inverted index. Higher-level packages (abbrev, query, snapshot,
// index) build on these types; none of them depend back on vicaya for
// anything but this data model.
package vicaya
