package extension

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/absmach/cartridge"
)

const payloadEnvPrefix = "PAYLOAD_"

// Env is the environment handed to an extension script.
type Env map[string]string

// NewEnv exports the instance identity.
func NewEnv(ic cartridge.InstanceContext) Env {
	env := Env{
		cartridge.EnvCartridgeKey:       ic.CartridgeKey,
		cartridge.EnvAppPath:            ic.AppPath,
		cartridge.EnvServiceGroup:       ic.ServiceGroup,
		cartridge.EnvServiceName:        ic.ServiceName,
		cartridge.EnvClusterID:          ic.ClusterID,
		cartridge.EnvLBClusterID:        ic.LBClusterID,
		cartridge.EnvNetworkPartitionID: ic.NetworkPartitionID,
		cartridge.EnvPartitionID:        ic.PartitionID,
		cartridge.EnvMemberID:           ic.MemberID,
		cartridge.EnvTenantID:           strconv.Itoa(ic.TenantID),
		cartridge.EnvRepoURL:            ic.RepoURL,
		cartridge.EnvPorts:              ic.PortsString(),
		cartridge.EnvDeployment:         string(ic.Deployment),
		cartridge.EnvManagerServiceType: ic.ManagerServiceType,
		cartridge.EnvWorkerServiceType:  ic.WorkerServiceType,
		cartridge.EnvMultitenant:        strconv.FormatBool(ic.Multitenant),
		cartridge.EnvClustering:         ic.Clustering,
	}
	if ic.LogFilePaths != "" {
		env[cartridge.EnvLogFilePaths] = ic.LogFilePaths
	}
	if ic.Provider != "" {
		env[cartridge.EnvProvider] = ic.Provider
	}

	return env
}

func (e Env) With(key, value string) Env {
	e[key] = value

	return e
}

func (e Env) WithTenant(tenantID int) Env {
	return e.With(cartridge.EnvTenantID, strconv.Itoa(tenantID))
}

// WithPayload exports the scalar fields of an event payload as
// PAYLOAD_<FIELD>, with camelCase names turned into upper snake case.
func (e Env) WithPayload(payload map[string]any) Env {
	for k, v := range payload {
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case bool:
			s = strconv.FormatBool(val)
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			continue
		}
		e[payloadEnvPrefix+upperSnake(k)] = s
	}

	return e
}

// Missing returns the keys that are absent or empty.
func (e Env) Missing(keys []string) []string {
	var missing []string
	for _, k := range keys {
		if e[k] == "" {
			missing = append(missing, k)
		}
	}

	return missing
}

// List renders the environment as sorted KEY=value pairs.
func (e Env) List() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)

	return out
}

func upperSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '.' || r == '-' || r == ' ':
			b.WriteRune('_')
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))):
			b.WriteRune('_')
			b.WriteRune(r)
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
	}

	return b.String()
}
