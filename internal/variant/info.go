package variant

import (
	"strconv"
	"strings"

	"github.com/inodb/vibe-vep/internal/coreerr"
)

// ParseInfo decodes a VCF INFO column into an InfoData value. Unknown keys
// are ignored. A malformed END value fails with coreerr.InfoParse; an
// unparseable SVTYPE value is treated as no symbolic type rather than a
// failure, since it does not block extracting END/INV3/INV5.
func ParseInfo(info string) (*InfoData, error) {
	data := &InfoData{}
	if info == "" || info == "." {
		return data, nil
	}

	for _, field := range strings.Split(info, ";") {
		if field == "" {
			continue
		}
		key, value, hasValue := strings.Cut(field, "=")
		switch key {
		case "SVTYPE":
			if hasValue {
				data.SVType = parseSVType(value)
			}
		case "END":
			if !hasValue {
				continue
			}
			end, err := strconv.Atoi(value)
			if err != nil {
				return nil, coreerr.Wrap(coreerr.InfoParse, err, "malformed END value %q", value)
			}
			data.End = end
			data.HasEnd = true
		case "INV3":
			data.IsInv3 = true
		case "INV5":
			data.IsInv5 = true
		case "CN":
			if !hasValue {
				continue
			}
			cn, err := strconv.Atoi(value)
			if err != nil {
				return nil, coreerr.Wrap(coreerr.InfoParse, err, "malformed CN value %q", value)
			}
			data.CN = cn
			data.HasCN = true
		default:
			// Unknown keys pass through untouched.
		}
	}

	return data, nil
}

func parseSVType(value string) SVType {
	switch value {
	case "DEL":
		return SVTypeDeletion
	case "DUP":
		return SVTypeDuplication
	case "TDUP":
		return SVTypeTandemDuplication
	case "INV":
		return SVTypeInversion
	case "INS":
		return SVTypeInsertion
	case "CNV":
		return SVTypeCNV
	case "BND":
		return SVTypeBND
	case "STR":
		return SVTypeSTR
	default:
		return SVTypeNone
	}
}
