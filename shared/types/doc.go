// Copyright 2026 Pensio
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

/*
Package types defines the wire contract of the Pensio Calculation Engine.

It contains the JSON request and response shapes of the
POST /calculation-requests endpoint (snake_case keys), the calculation
message record exchanged between the engine and its callers, and the
loosely-typed mutation property bag with its typed accessors.

The types here are shared between the engine and SDK-style consumers and
must stay wire-compatible: mutations received in a request are echoed back
verbatim in the response, so Mutation keeps hold of its raw JSON.
*/
package types
