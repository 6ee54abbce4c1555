// Copyright 2026 Pensio
// SPDX-License-Identifier: Apache-2.0
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Command calculation-engine runs the Pensio Calculation Engine service.

The Calculation Engine evaluates a tenant's ordered mutation list against an
empty pension situation and reports the resulting dossier state, the emitted
calculation messages, and the overall outcome. It holds no state between
requests.

# Usage

	calculation-engine

# Environment Variables

Optional:
  - PORT: HTTP server port (default: 8080)
  - SCHEME_REGISTRY_URL: base URL of the scheme registry service
  - SCHEME_REGISTRY_TIMEOUT: registry request timeout (default: 2s)
  - ACCRUAL_RATES_FILE: path to a YAML accrual rate table
  - CORS_ALLOWED_ORIGINS: comma-separated list of allowed origins (default: *)

# Accrual Rate Resolution

Retirement calculations resolve a yearly accrual rate per pension scheme.
Resolution order is the static rate table, then the scheme registry, then the
built-in default of 0.02:

	# Static table
	export ACCRUAL_RATES_FILE="/etc/pensio/accrual-rates.yaml"

	# Scheme registry
	export SCHEME_REGISTRY_URL="http://scheme-registry:8090"
	export SCHEME_REGISTRY_TIMEOUT="2s"

# Example

	export PORT=8080
	./calculation-engine
*/
package main
