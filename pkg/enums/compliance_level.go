package enums

// ComplianceLevel grades how much import/export scrutiny a transaction needs.
type ComplianceLevel string

const (
	ComplianceLevelStandard   ComplianceLevel = "standard"
	ComplianceLevelEnhanced   ComplianceLevel = "enhanced"
	ComplianceLevelRestricted ComplianceLevel = "restricted"
)

// String implements fmt.Stringer.
func (c ComplianceLevel) String() string {
	return string(c)
}
