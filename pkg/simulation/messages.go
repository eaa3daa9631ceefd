package simulation

import (
	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/topology"
)

var securityDescriptors = []string{"standard", "outdated", "enhanced"}

// infectionNarrative returns the log line for a freshly infected node.
func infectionNarrative(t topology.NodeType) narrative.Entry {
	switch t {
	case topology.Firewall:
		return narrative.New(narrative.Warning, "Bypassing firewall security by mimicking authorized traffic patterns")
	case topology.Router:
		return narrative.New(narrative.Info, "Routing table accessed, creating hidden communication channels")
	case topology.Server:
		return narrative.New(narrative.Success, "Server infiltrated - established persistence via modified service module")
	case topology.Database:
		return narrative.New(narrative.Success, "Database server accessed - concealing queries within legitimate traffic")
	default:
		return narrative.Newf(narrative.Info, "Successfully infiltrated %s node", t)
	}
}

// Discoveries is the fixed sequence environment analysis reveals.
var Discoveries = []Discovery{
	{Kind: "personnel", Message: "Discovered classified personnel records for operation 'SHADOWFALL'", Severity: narrative.Warning},
	{Kind: "operation", Message: "Located protocol details for experimental memory reconfiguration technology", Severity: narrative.Warning},
	{Kind: "subject", Message: "Found list of subjects previously processed through memory reconfiguration", Severity: narrative.Warning},
	{Kind: "security", Message: "Identified critical vulnerability in security subsystem", Severity: narrative.Success},
	{Kind: "network", Message: "Mapped connections to 3 additional classified research facilities", Severity: narrative.Info},
	{Kind: "system", Message: "Discovered automated backup schedule - optimal exfiltration window identified", Severity: narrative.Success},
}

const (
	statusMapping      = "Mapping network topology..."
	statusIdentifying  = "Identifying vulnerable nodes..."
	statusScanDone     = "Scan complete"
	statusPersistence  = "Establishing persistence..."
	statusAdapting     = "Adapting to system protocols..."
	statusInfiltrated  = "Infiltration complete"
	statusMimicryOn    = "Protocol mimicry active"
	statusAnalyzing    = "Analyzing environment..."
	statusAnalysisDone = "Analysis Complete"
	statusExfiltrating = "Exfiltrating data..."
	statusExfilDone    = "Exfiltration Complete"
	statusNoData       = "No data to exfiltrate"
)
