package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const marketingHeader = "date,tactic,state,campaign,impression,clicks,spend,attributed revenue\n"

const businessHeader = "date,# of orders,# of new orders,new customers,total revenue,gross profit,COGS\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeSources lays out a complete, valid input set in a temp dir.
func writeSources(t *testing.T) (string, Sources) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "Facebook.csv", marketingHeader+
		"2024-01-01,ASC,CA,Spring Sale,1000,50,200,800\n"+
		"2024-01-02,Retargeting,NY,Spring Sale,0,0,100,0\n")
	writeFile(t, dir, "Google.csv", marketingHeader+
		"2024-01-01,Search,CA,Brand,500,25,50,400\n"+
		"2024-01-03,Display,TX,Generic,200,0,0,0\n"+
		"2024-01-03,Search,TX,Generic,300,30,0,50\n")
	writeFile(t, dir, "TikTok.csv", marketingHeader+
		"2024-01-02,Spark Ads,WA,Launch,400,8,40,120\n")
	writeFile(t, dir, "Business.csv", businessHeader+
		"2024-01-01,120,80,60,10000,4000,6000\n"+
		"2024-01-02,100,0,40,9000,3500,5500\n")
	return dir, DefaultSources(dir)
}
