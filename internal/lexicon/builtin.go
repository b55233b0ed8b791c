package lexicon

import "mroparse/internal"

// Seed data below comes from live SAP exports, distributor order sheets and
// completed customer workbooks. The training file extends every table at
// build time; built-in entries win on conflict.

// roleOrder fixes assignment priority during column mapping. Supplier must
// claim its headers before mfg_output so "Vendor Name" style columns do not
// get bound as manufacturer outputs.
var roleOrder = []internal.ColumnRole{
	internal.RoleDescription,
	internal.RolePOText,
	internal.RoleNotes,
	internal.RoleSupplier,
	internal.RoleMfgOutput,
	internal.RolePNOutput,
	internal.RoleSimOutput,
	internal.RoleItemNumber,
}

var builtinAliases = map[internal.ColumnRole][]string{
	internal.RoleDescription: {
		"Material Description", "MATERIAL DESCRIPTION", "Description", "DESCRIPTION",
		"Item Description", "ITEM DESCRIPTION", "Mtrl Desc", "LONG_TEXT", "Long Text",
		"Material Desc", "Product Description", "Line Description", "Short Description",
		"MATNR_DESC", "Mat Description", "DESC", "Desc", "Item Desc", "Product Desc",
		"Short Text", "SHORT TEXT", "Short text",
	},
	internal.RolePOText: {
		"Material PO Text", "PO Text", "PO_TEXT", "Purchase Order Text", "PO Description",
		"PO Line Text", "PO ITEM TEXT", "MATERIAL PO TEXT", "Material PO TEXT",
	},
	internal.RoleNotes: {
		"Notes", "NOTES", "INFORECTXT1", "INFORECTXT2", "Comments", "Remarks",
		"Additional Info", "INFO REC TXT 1", "INFO REC TXT 2",
	},
	internal.RoleSupplier: {
		"Supplier", "SUPPLIER", "Supplier Name", "SUPPLIER NAME", "Supplier Name1",
		"Supplier Name 1", "Vendor Name", "VENDOR NAME", "Vendor Name 1",
	},
	internal.RoleMfgOutput: {
		"MFG", "Manufacturer", "MANUFACTURER", "Mfg", "Manufacturer 1", "MFR",
		"Brand", "OEM", "Vendor", "VENDOR", "MFGR", "Manufacturer Name", "MFG Name",
	},
	internal.RolePNOutput: {
		"PN", "Part Number", "PART NUMBER", "Part Number 1", "Part No", "Part #",
		"PART#", "Model Number", "MODEL NUMBER", "Catalog Number", "CAT NO",
		"MFG Part Number", "MFR Part Number", "Part No.", "PART NO", "Part Num",
	},
	internal.RoleSimOutput: {
		"SIM", "SIM Number", "SIM #", "SIM_NUMBER", "SIM NUM",
	},
	internal.RoleItemNumber: {
		"Item #", "ITEM #", "ITEM#", "Item Number", "Catalog #", "Cat #", "CAT#",
		"Stock Number", "ITEM NUMBER",
	},
}

var builtinKeywords = map[internal.ColumnRole][]string{
	internal.RoleDescription: {"desc", "material", "text", "long", "product", "item desc"},
	internal.RolePOText:      {"po", "purchase", "order text"},
	internal.RoleNotes:       {"note", "info", "comment", "remark"},
	internal.RoleSupplier:    {"supplier"},
	internal.RoleMfgOutput:   {"mfg", "manuf", "brand", "vendor", "oem", "mfr"},
	internal.RolePNOutput:    {"part", "pn", "model", "catalog", "cat no", "part no"},
	internal.RoleSimOutput:   {"sim"},
	internal.RoleItemNumber:  {"item", "stock", "catalog"},
}

// builtinNormalize maps abbreviated or misspelled manufacturer names, as they
// show up in SAP short text, to their canonical form. Keys and values are
// uppercase.
var builtinNormalize = map[string]string{
	"PANDT":         "PANDUIT",
	"CUTLR-HMR":     "CUTLER-HAMMER",
	"APLTN":         "APPLETON",
	"CROUS HIND":    "CROUSE HINDS",
	"CROUSE-HINDS":  "CROUSE HINDS",
	"EFECTOR":       "IFM EFECTOR",
	"TOPWRX":        "TOPWORX",
	"ELCTRO":        "ELECTRO-SENSORS",
	"TELCO SYSTEMS": "TELCO",
	"T&BETTS":       "THOMAS & BETTS",
	"FXBRO":         "FOXBORO",
	"FXBRO INVN":    "FOXBORO",
	"WATLOW-E":      "WATLOW",
	"WATTS-RG":      "WATTS",
	"MONITOR":       "MONITOR TECHNOLOGIES LLC",
	"MONITEUR":      "MONITEUR DEVICES",
	"SOUTHWRE":      "SOUTHWIRE",
	"USG CORP":      "USG CORPORATION",
	"STATIC O RING": "STATIC O-RING",
	"SQUARE-D":      "SQUARE D",
	"SQ D":          "SQUARE D",
	"ALN BRDLY":     "ALLEN BRADLEY",
	"ALLEN-BRADLEY": "ALLEN BRADLEY",
	"PHOENIX CNTCT": "PHOENIX CONTACT",
	"PHNX CNTCT":    "PHOENIX CONTACT",
	"FOLCIERI":      "BRUNO FOLCIERI",
	"SEW EURODR":    "SEW EURODRIVE",
	"SEW":           "SEW EURODRIVE",
	"BACO":          "BACO CONTROLS",
	"ROSSI":         "ROSSI MOTORIDUTTORI",
}

var builtinKnown = []string{
	"HUBBELL", "SIEMENS", "GATES", "LOVEJOY", "PANDUIT", "SQUARE D", "EATON",
	"APPLETON", "CUTLER-HAMMER", "CROUSE HINDS", "IFM EFECTOR", "TOPWORX",
	"ELECTRO-SENSORS", "TELCO", "THOMAS & BETTS", "FOXBORO", "WATLOW", "WATTS",
	"MONITOR TECHNOLOGIES LLC", "MONITEUR DEVICES", "SOUTHWIRE", "USG CORPORATION",
	"STATIC O-RING", "ALLEN BRADLEY", "PHOENIX CONTACT", "BRUNO FOLCIERI",
	"SEW EURODRIVE", "BACO CONTROLS", "ROSSI MOTORIDUTTORI",
	"WEG", "HKK", "OLI", "WAM", "PTI", "ABB", "GE", "AB",
	"FESTO", "PILZ", "BUSSMANN", "MILWAUKEE", "WESTINGHOUSE", "ASCO",
	"3M", "HONEYWELL", "OMRON", "BALDOR", "DODGE", "SKF", "TIMKEN", "PARKER",
	"REXNORD", "BANNER", "TURCK", "PEPPERL+FUCHS", "ENDRESS+HAUSER", "ROSEMOUNT",
	"FLENDER", "FALK", "MARTIN", "BROWNING", "DAYTON", "LEESON", "MARATHON",
	"EMERSON", "DANFOSS", "YASKAWA", "MITSUBISHI", "SCHNEIDER", "LEGRAND",
	"IDEC", "FUJI", "NSK", "NTN", "GOODYEAR", "CONTINENTAL", "DEMAG", "KTR",
	"NORD", "BONFIGLIOLI", "FABCO-AIR", "BIMBA", "SMC", "NUMATICS", "VICKERS",
	"ASHCROFT", "WIKA", "DWYER", "KUNKLE", "FISHER", "GOULDS",
}

// Pure distributors. A distributor in a supplier column is a resale channel,
// never the manufacturer.
var builtinDistributors = []string{
	"GRAYBAR", "CED", "MC- MC", "MC-MC", "MCNAUGHTON-MCKAY", "EISI",
	"MCMASTER", "MCMASTER-CARR", "WESCO", "MOTION INDUSTRIES", "KAMAN",
	"APPLIED INDUSTRIAL", "FASTENAL", "GRAINGER",
}

// Product-family words. A manufacturer candidate containing one of these is
// describing the item, not naming its maker.
var builtinDescriptorKeywords = []string{
	"SWITCH", "TRANSMITTER", "CONNECTOR", "THERMOCOUPLE", "CABLE", "VALVE",
	"RELAY", "SENSOR", "HEAD", "CONTACTOR", "MODULE", "FAN", "BEACON",
	"BRUSH", "PLUG", "RECEPTACLE", "REGULATOR",
}

// Descriptor terms and SAP abbreviations that masquerade as manufacturer
// names in compressed short text.
var builtinDescriptorTerms = []string{
	"LVL", "CTRL", "FIBRE OPTIC", "EF-11", "EF 2", "EF1 1/2", "EF 1 1/2", "EF1/2",
	"TE", "NM", "BLK", "DIA", "FR", "DC", "AC", "SS", "MTR", "DRV", "BRG",
	"SCR", "VLV", "PMP", "HEX", "RND", "CS", "SP",
	"DISCONNECT", "RESIST", "PLANE", "FLG", "RLR", "KIT", "RED", "BAR",
	"H/W", "CVR", "ZNT", "PWR", "NPT", "LLC", "MAC", "LIP",
}

// Names that legitimately contain digits; everything else with a digit is
// rejected as a manufacturer.
var builtinDigitNames = []string{"3M"}

// Manufacturer prefix codes glued onto catalog numbers in SAP short text.
// Two- and three-letter prefixes require the remainder to carry both a
// letter and a digit.
var builtinPrefixes = map[string]string{
	"HUB": "HUBBELL",
	"SQD": "SQUARE D",
	"SIE": "SIEMENS",
	"APL": "APPLETON",
	"CRO": "CROUSE HINDS",
}

// Four-letter composite prefixes are specific enough that a pure-digit
// remainder is acceptable (ASCO8210, BUSS relays).
var builtinComposites = map[string]string{
	"ASCO": "ASCO",
	"BUSS": "BUSSMANN",
	"MILW": "MILWAUKEE",
	"WEST": "WESTINGHOUSE",
}

// SAP internal material-number prefixes. Tokens starting with these are
// plant codes, not part numbers.
var builtinInvalidPNPrefixes = []string{
	"N0", "N7", "N71", "N72", "N73", "CNVL",
	"T7", "T71", "T72", "T76", "T77", "T78", "T79",
}

// Line items that carry charges instead of products.
var builtinNonProduct = []string{
	"FREIGHT", "TAX", "LABOR", "DISCOUNT", "SHIPPING", "HANDLING",
	"MISC", "CREDIT", "DEPOSIT", "SURCHARGE",
}

// Corporate suffixes stripped from supplier names before they are offered
// as manufacturer fallbacks.
var builtinCorporateSuffixes = []string{
	"INCORPORATED", "CORPORATION", "COMPANY", "LIMITED", "HOLDINGS",
	"INC", "LLC", "CORP", "LTD", "CO", "SPA", "GMBH", "SRL", "SA", "USA",
}
