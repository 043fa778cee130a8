package provider

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type FileProviderTestSuite struct {
	suite.Suite
	dir   string
	start time.Time
	end   time.Time
}

func TestFileProviderSuite(t *testing.T) {
	suite.Run(t, new(FileProviderTestSuite))
}

func (suite *FileProviderTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
}

func (suite *FileProviderTestSuite) writeFile(name string, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *FileProviderTestSuite) TestFetchCSV() {
	path := suite.writeFile("bars.csv", `time,symbol,open,high,low,close,volume
2024-01-03,SPY,101,103,100,102,1500
2024-01-02,SPY,100,102,99,101,1000
2024-01-02,QQQ,400,402,399,401,800
2024-02-01,SPY,110,111,109,110,900
`)

	provider, err := NewFileProvider(path, nil)
	suite.Require().NoError(err)
	defer provider.Close()

	data, err := provider.Fetch(context.Background(), "SPY", suite.start, suite.end)
	suite.Require().NoError(err)
	suite.Require().Len(data, 2)

	suite.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), data[0].Time.UTC())
	suite.Equal(101.0, data[0].Close)
	suite.Equal(102.0, data[1].Close)
	suite.Equal(1500.0, data[1].Volume)
}

func (suite *FileProviderTestSuite) TestEndDateIsInclusive() {
	path := suite.writeFile("bars.csv", `date,close
2024-01-30,10
2024-01-31,11
`)

	provider, err := NewFileProvider(path, nil)
	suite.Require().NoError(err)
	defer provider.Close()

	data, err := provider.Fetch(context.Background(), "ANY", suite.start, suite.end)
	suite.Require().NoError(err)
	suite.Require().Len(data, 2)
	suite.Equal(11.0, data[1].Close)
	suite.Equal(0.0, data[1].Open)
}

func (suite *FileProviderTestSuite) TestMissingCloseColumn() {
	path := suite.writeFile("bars.csv", `time,open
2024-01-02,100
`)

	provider, err := NewFileProvider(path, nil)
	suite.Require().NoError(err)
	defer provider.Close()

	_, err = provider.Fetch(context.Background(), "SPY", suite.start, suite.end)
	suite.Require().Error(err)
	suite.True(errors.IsMissingColumnError(err))
}

func (suite *FileProviderTestSuite) TestEmptyCloseIsUndefined() {
	path := suite.writeFile("bars.csv", `time,close
2024-01-02,100
2024-01-03,
`)

	provider, err := NewFileProvider(path, nil)
	suite.Require().NoError(err)
	defer provider.Close()

	data, err := provider.Fetch(context.Background(), "SPY", suite.start, suite.end)
	suite.Require().NoError(err)
	suite.Require().Len(data, 2)
	suite.True(math.IsNaN(data[1].Close))
}

func (suite *FileProviderTestSuite) TestMissingFile() {
	_, err := NewFileProvider(filepath.Join(suite.dir, "missing.parquet"), nil)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *FileProviderTestSuite) TestUnsupportedExtension() {
	path := suite.writeFile("bars.json", `{}`)

	_, err := NewFileProvider(path, nil)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *FileProviderTestSuite) TestNewMarketDataProvider() {
	path := suite.writeFile("bars.csv", "time,close\n2024-01-02,1\n")

	fileProvider, err := NewMarketDataProvider(ProviderFile, Config{DataPath: path}, nil)
	suite.Require().NoError(err)
	suite.IsType(&FileProvider{}, fileProvider)

	binanceProvider, err := NewMarketDataProvider(ProviderBinance, Config{}, nil)
	suite.Require().NoError(err)
	suite.IsType(&BinanceClient{}, binanceProvider)

	_, err = NewMarketDataProvider(ProviderPolygon, Config{}, nil)
	suite.Error(err)

	_, err = NewMarketDataProvider("yahoo", Config{}, nil)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}
